package match

import "errors"

var (
	ErrNoSpace           = errors.New("no space available")
	ErrInactive          = errors.New("match is not active")
	ErrAlreadyPlaying    = errors.New("already playing")
	ErrAlreadySpectating = errors.New("already spectating")
	ErrAlreadyRunning    = errors.New("a match is already running")
	ErrPlayerNotFound    = errors.New("player not found")
)

// ConfigError reports a match that cannot start: invalid tunables, a bad
// zone layout or a base schematic without a core.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "match configuration: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }
