package analysis

import "time"

// Status captures the progress of one file within a full analysis.
type Status string

const (
	// StatusQueued indicates the file is listed and waiting for a worker.
	StatusQueued Status = "queued"
	// StatusChecking indicates a worker is checking the file.
	StatusChecking Status = "checking"
	// StatusDone indicates the file was checked without errors.
	StatusDone Status = "done"
	// StatusError indicates the file could not be read or has error diagnostics.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Workers call OnEvent concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func (e *Engine) emit(evt Event) {
	if e.progress == nil {
		return
	}
	e.progress.OnEvent(evt)
}
