package main

import "github.com/rxtech-lab/argo-trend/internal/types"

// RunStartedMsg is sent once the data source is open and the universe is known.
type RunStartedMsg struct {
	RunID   string
	Symbols []string
	Total   int
}

// StepMsg carries the result of one replayed step.
type StepMsg struct {
	Current int
	Total   int
	Result  types.StepResult
}

// ReplayDoneMsg signals that the replay finished, failed or was cancelled.
type ReplayDoneMsg struct {
	Stats types.RunStatistics
	Err   error
}
