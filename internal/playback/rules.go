package playback

// Progress thresholds for play bookkeeping. The two thresholds feed
// different consumers and are deliberately independent: crossing
// ListenedThreshold marks the history record as meaningfully listened,
// while CompletedThreshold gates both recency recording and history
// completion.
const (
	// ListenedThreshold is the progress fraction at which a play counts
	// as meaningfully listened (50%)
	ListenedThreshold = 0.5

	// CompletedThreshold is the progress fraction at which a play counts
	// as completed for recency and history purposes (90%)
	CompletedThreshold = 0.9
)

// MeaningfullyListened reports whether progress crosses the listened mark
func MeaningfullyListened(progress float64) bool {
	return progress >= ListenedThreshold
}

// CountsAsCompleted reports whether progress crosses the completion mark
func CountsAsCompleted(progress float64) bool {
	return progress >= CompletedThreshold
}
