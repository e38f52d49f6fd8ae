package system

import (
	"time"

	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/zone"
)

// Command is a membership event or operator command applied on the game
// loop. Reply, when set, receives the result without blocking.
type Command interface {
	apply(h *match.Host) error
	reply() chan<- error
}

func current(h *match.Host) (*match.Match, error) {
	m := h.Current()
	if m == nil {
		return nil, match.ErrInactive
	}
	return m, nil
}

type Join struct {
	Player string
	Name   string
	Real   bool // false for a rejoin
	Reply  chan<- error
}

func (c Join) apply(h *match.Host) error {
	m, err := current(h)
	if err != nil {
		return err
	}
	if !c.Real {
		_, err := m.Rejoin(c.Player)
		return err
	}
	_, err = m.Join(c.Player, c.Name, true)
	return err
}

func (c Join) reply() chan<- error { return c.Reply }

type Leave struct {
	Player string
	Reason match.LeaveReason
	Reply  chan<- error
}

func (c Leave) apply(h *match.Host) error {
	m, err := current(h)
	if err != nil {
		return err
	}
	if c.Reason == match.LeaveSpectate {
		return m.Spectate(c.Player)
	}
	return m.Leave(c.Player, c.Reason)
}

func (c Leave) reply() chan<- error { return c.Reply }

type StructureDestroyed struct {
	At      zone.Point
	WasCore bool
}

func (c StructureDestroyed) apply(h *match.Host) error {
	m, err := current(h)
	if err != nil {
		return err
	}
	m.StructureDestroyed(c.At, c.WasCore)
	return nil
}

func (c StructureDestroyed) reply() chan<- error { return nil }

// Start begins a new match unless one is still running.
type Start struct {
	Generator string
	Reply     chan<- error
}

func (c Start) apply(h *match.Host) error {
	_, err := h.Start(c.Generator)
	return err
}

func (c Start) reply() chan<- error { return c.Reply }

// SetTime moves the match clock to Elapsed.
type SetTime struct {
	Elapsed time.Duration
	Reply   chan<- error
}

func (c SetTime) apply(h *match.Host) error {
	m, err := current(h)
	if err != nil {
		return err
	}
	if !m.Active() {
		return match.ErrInactive
	}
	m.SetElapsed(c.Elapsed)
	return nil
}

func (c SetTime) reply() chan<- error { return c.Reply }

// Query runs Fn against the current match on the game loop. Fn must not
// retain the match.
type Query struct {
	Fn    func(m *match.Match) error
	Reply chan<- error
}

func (c Query) apply(h *match.Host) error {
	m, err := current(h)
	if err != nil {
		return err
	}
	return c.Fn(m)
}

func (c Query) reply() chan<- error { return c.Reply }

// Inbox carries commands from any goroutine to the game loop.
type Inbox struct {
	ch chan Command
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 64
	}
	return &Inbox{ch: make(chan Command, size)}
}

// Send queues a command without blocking. It reports false when the inbox is full.
func (in *Inbox) Send(c Command) bool {
	select {
	case in.ch <- c:
		return true
	default:
		return false
	}
}

func (in *Inbox) Len() int { return len(in.ch) }
