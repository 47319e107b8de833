package media

// Outcome is the result of materializing one thumbnail. The walker does not
// act on it; the indexer only tallies it for run summaries and metrics.
type Outcome int

const (
	// OutcomeGenerated means a new thumbnail was written.
	OutcomeGenerated Outcome = iota
	// OutcomeSkipped means a thumbnail already existed and was kept.
	OutcomeSkipped
	// OutcomeNoDuration means the probe produced no usable duration.
	OutcomeNoDuration
	// OutcomeFailed means directory creation, extraction or verification failed.
	OutcomeFailed
)

// String returns the metric label for an outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoDuration:
		return "no_duration"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StalePolicy decides whether an existing thumbnail is reused.
type StalePolicy int

const (
	// StaleNever treats any existing thumbnail as current. Replacing a video
	// keeps its old thumbnail until the thumbnail is removed by hand.
	StaleNever StalePolicy = iota
	// StaleModTime regenerates a thumbnail that is older than its video.
	StaleModTime
)

// String returns the configuration name of a policy.
func (p StalePolicy) String() string {
	if p == StaleModTime {
		return "modtime"
	}
	return "never"
}
