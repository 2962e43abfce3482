package playback

import "testing"

func TestMeaningfullyListened(t *testing.T) {
	tests := []struct {
		progress float64
		want     bool
	}{
		{0.0, false},
		{0.49, false},
		{0.5, true},
		{0.51, true},
		{1.0, true},
	}

	for _, tt := range tests {
		if got := MeaningfullyListened(tt.progress); got != tt.want {
			t.Errorf("MeaningfullyListened(%v) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestCountsAsCompleted(t *testing.T) {
	tests := []struct {
		progress float64
		want     bool
	}{
		{0.0, false},
		{0.5, false},
		{0.89, false},
		{0.9, true},
		{0.95, true},
		{1.0, true},
	}

	for _, tt := range tests {
		if got := CountsAsCompleted(tt.progress); got != tt.want {
			t.Errorf("CountsAsCompleted(%v) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}
