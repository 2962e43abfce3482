package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ipcClient speaks mpv's JSON IPC protocol over a unix socket.
// Each request dials a fresh connection with a bounded deadline so a hung
// subprocess can never block the caller indefinitely.
type ipcClient struct {
	socketPath string
	timeout    time.Duration
	requestID  atomic.Int64
}

func newIPCClient(socketPath string, timeout time.Duration) *ipcClient {
	return &ipcClient{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
}

// roundTrip sends one command and waits for its matching response,
// skipping any asynchronous event lines mpv interleaves on the socket.
func (c *ipcClient) roundTrip(command ...any) (json.RawMessage, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial control socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	id := c.requestID.Add(1)
	req := ipcRequest{Command: command, RequestID: id}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	payload = append(payload, '\n')

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue // malformed line, keep reading until deadline
		}
		if resp.RequestID != id {
			continue // event notification or stale response
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("command rejected: %s", resp.Error)
		}
		return resp.Data, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return nil, fmt.Errorf("control socket closed before response")
}

// getFloat queries a numeric property such as time-pos or duration
func (c *ipcClient) getFloat(property string) (float64, error) {
	data, err := c.roundTrip("get_property", property)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("unexpected value for %s: %w", property, err)
	}
	return v, nil
}

// setBool sets a boolean property such as pause
func (c *ipcClient) setBool(property string, value bool) error {
	_, err := c.roundTrip("set_property", property, value)
	return err
}
