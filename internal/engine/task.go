package engine

// Status is the lifecycle state of a Task.
type Status int

const (
	StatusPending Status = iota
	StatusRequesting
	StatusStreaming
	StatusComplete
	StatusFailedTerminal
	StatusFailedExhausted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRequesting:
		return "requesting"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusFailedTerminal:
		return "failed-terminal"
	case StatusFailedExhausted:
		return "failed-exhausted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can happen from s.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailedTerminal || s == StatusFailedExhausted
}

// Task is one logical transfer. The engine owns it for the duration of Run; SourceURL,
// DestinationPath, AuthCookies and RequestedChunkSize must not change once Run starts.
type Task struct {
	SourceURL          string
	DestinationPath    string
	AuthCookies        map[string]string
	RequestedChunkSize int64 // zero selects adaptive sizing

	BytesOnDisk  int64
	TotalSize    int64 // -1 until a response declares a length
	AttemptCount int
	Status       Status
}

func NewTask(sourceURL, destinationPath string, cookies map[string]string, chunkSize int64) *Task {
	copied := make(map[string]string, len(cookies))
	for k, v := range cookies {
		copied[k] = v
	}
	return &Task{
		SourceURL:          sourceURL,
		DestinationPath:    destinationPath,
		AuthCookies:        copied,
		RequestedChunkSize: chunkSize,
		TotalSize:          -1,
		Status:             StatusPending,
	}
}
