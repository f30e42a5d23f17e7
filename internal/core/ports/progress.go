package ports

// Progress starts progress reporting for a long-running operation.
type Progress interface {
	// Begin opens a sink for an operation over total items.
	Begin(title string, total int) ProgressSink
}

// ProgressSink receives progress updates for one operation.
type ProgressSink interface {
	// Report records a step with a human-readable message and the
	// percentage of the whole it represents.
	Report(message string, incrementPct float64)
	// Done closes the sink.
	Done()
}
