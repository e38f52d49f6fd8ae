package system

import (
	"context"
	"time"

	coresys "github.com/hexedgo/server/internal/core/system"
	"go.uber.org/zap"
)

// Flusher is a buffered writer drained once per tick; the capture log is one.
type Flusher interface {
	Pending() int
	Flush(ctx context.Context) (int, error)
}

// PersistSystem writes buffered match records to the database whenever
// something is pending. A failed flush keeps the buffer and is retried
// after a pause. Phase 4 (Persist).
type PersistSystem struct {
	sink    Flusher
	timeout time.Duration
	retry   time.Duration
	backoff time.Duration
	log     *zap.Logger
}

func NewPersistSystem(sink Flusher, log *zap.Logger) *PersistSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &PersistSystem{sink: sink, timeout: 5 * time.Second, retry: 5 * time.Second, log: log}
}

func (s *PersistSystem) Name() string         { return "persist" }
func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(dt time.Duration) {
	if s.backoff > 0 {
		s.backoff -= dt
		return
	}
	if s.sink.Pending() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.sink.Flush(ctx)
	if err != nil {
		s.log.Error("flush capture log", zap.Int("pending", s.sink.Pending()), zap.Error(err))
		s.backoff = s.retry
		return
	}
	s.log.Debug("capture log flushed", zap.Int("rows", n))
}

// FlushNow drains the sink regardless of tick; used on shutdown.
func (s *PersistSystem) FlushNow(ctx context.Context) error {
	if s.sink.Pending() == 0 {
		return nil
	}
	_, err := s.sink.Flush(ctx)
	return err
}
