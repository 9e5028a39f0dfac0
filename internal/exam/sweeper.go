package exam

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper auto-submits attempts whose exam duration has elapsed. One sweeper
// per process is enough; a second instance racing the same rows just loses
// the finalize compare-and-swap.
type Sweeper struct {
	store Store
	log   *logrus.Logger
	every time.Duration
}

func NewSweeper(store Store, log *logrus.Logger, every time.Duration) *Sweeper {
	if every <= 0 {
		every = time.Minute
	}
	return &Sweeper{store: store, log: log, every: every}
}

// Run blocks until ctx is canceled, sweeping on a fixed interval.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.store.ListExpired(ctx, time.Now())
	if err != nil {
		s.log.WithError(err).Warn("sweep: list expired attempts")
		return
	}
	for _, sub := range expired {
		if _, err := s.store.AutoFinalize(ctx, sub.ID); err != nil {
			// A student submit can land between the list and the finalize.
			if errors.Is(err, ErrAlreadySubmitted) {
				continue
			}
			s.log.WithError(err).WithField("submission_id", sub.ID).Warn("sweep: auto submit")
			continue
		}
		s.log.WithFields(logrus.Fields{
			"submission_id": sub.ID,
			"exam_id":       sub.ExamID,
			"student_id":    sub.StudentID,
		}).Info("attempt auto-submitted after time limit")
	}
}
