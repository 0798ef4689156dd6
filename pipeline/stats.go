package pipeline

import "time"

// Pipeline steps in execution order.
const (
	StepLoad     = "load"
	StepAllocate = "allocate"
	StepUpload   = "upload"
	StepDenoise  = "denoise"
	StepDownload = "download"
	StepWrite    = "write"
)

type StepStat struct {
	// The step name.
	Step string

	// Wall time spent in the step.
	Time time.Duration
}

type RunStats struct {
	// The session that ran the denoiser.
	Session string

	// Beauty image resolution and channel count.
	Resolution string

	// Guides bound to the denoiser.
	Guides []string

	// Individual step stats.
	Steps []StepStat

	// Time spent inside the denoiser stage as reported by the session.
	StageTime time.Duration

	// Total time for the entire run.
	TotalTime time.Duration
}
