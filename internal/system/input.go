package system

import (
	"errors"
	"time"

	coresys "github.com/hexedgo/server/internal/core/system"
	"github.com/hexedgo/server/internal/match"
	"go.uber.org/zap"
)

// InputSystem drains the inbox and applies each command to the host and its
// current match. Phase 0 (Input).
type InputSystem struct {
	host       *match.Host
	inbox      *Inbox
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(host *match.Host, inbox *Inbox, maxPerTick int, log *zap.Logger) *InputSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &InputSystem{host: host, inbox: inbox, maxPerTick: maxPerTick, log: log}
}

func (s *InputSystem) Name() string         { return "input" }
func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; s.maxPerTick <= 0 || i < s.maxPerTick; i++ {
		select {
		case c := <-s.inbox.ch:
			s.handle(c)
		default:
			return
		}
	}
}

func (s *InputSystem) handle(c Command) {
	err := c.apply(s.host)
	if err != nil {
		lvl := s.log.Debug
		if !isRejection(err) {
			lvl = s.log.Warn
		}
		lvl("command rejected", zap.String("command", commandName(c)), zap.Error(err))
	}
	if r := c.reply(); r != nil {
		select {
		case r <- err:
		default:
		}
	}
}

// isRejection reports the terse, expected refusals players see.
func isRejection(err error) bool {
	for _, target := range []error{
		match.ErrNoSpace, match.ErrInactive, match.ErrAlreadyPlaying,
		match.ErrAlreadySpectating, match.ErrPlayerNotFound, match.ErrAlreadyRunning,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func commandName(c Command) string {
	switch c.(type) {
	case Join:
		return "join"
	case Leave:
		return "leave"
	case StructureDestroyed:
		return "structure-destroyed"
	case Start:
		return "start"
	case SetTime:
		return "set-time"
	case Query:
		return "query"
	}
	return "unknown"
}
