package diag

// Level defines the importance of a diagnostic or user message.
type Level uint8

const (
	// LevelError is for problems that stop the project from building.
	LevelError Level = iota
	// LevelWarning is for problems that do not.
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	}
	return "UNKNOWN"
}
