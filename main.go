package main

import "github.com/stillpoint/stillpoint/cmd"

func main() {
	cmd.Execute()
}
