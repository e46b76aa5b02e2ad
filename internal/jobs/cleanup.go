package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"idcore/api/internal/config"
	"idcore/api/internal/repository"
)

// Scheduler runs the storage-hygiene jobs: expired sessions and
// expired token records are deleted on their configured schedules.
// Neither job affects correctness; expiry is always re-checked at
// read time.
type Scheduler struct {
	cron     *cron.Cron
	sessions repository.SessionRepository
	tokens   repository.TokenRepository
	cfg      config.JobsConfig
	log      zerolog.Logger
}

func NewScheduler(
	sessions repository.SessionRepository,
	tokens repository.TokenRepository,
	cfg config.JobsConfig,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SessionCleanupSchedule, s.cleanupSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.TokenCleanupSchedule, s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().
		Str("sessions", s.cfg.SessionCleanupSchedule).
		Str("tokens", s.cfg.TokenCleanupSchedule).
		Msg("cleanup scheduler started")
	return nil
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session cleanup failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("expired sessions cleaned up")
	}
}

func (s *Scheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("token cleanup failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("expired jwt tokens cleaned up")
	}
}
