package jobs

import (
	"context"
	"log"
	"time"
)

// expiredSessionDeleter is the slice of the session repository this job needs.
type expiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionCleanupJob periodically purges expired login sessions
type SessionCleanupJob struct {
	repo     expiredSessionDeleter
	interval time.Duration
	stop     chan struct{}
}

func NewSessionCleanupJob(repo expiredSessionDeleter) *SessionCleanupJob {
	return &SessionCleanupJob{
		repo:     repo,
		interval: 15 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *SessionCleanupJob) Start(ctx context.Context) {
	log.Println("🕐 Starting session cleanup job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Session cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Session cleanup job stopped")
			return
		case <-ticker.C:
			j.purgeExpiredSessions(ctx)
		}
	}
}

func (j *SessionCleanupJob) Stop() {
	close(j.stop)
}

func (j *SessionCleanupJob) purgeExpiredSessions(ctx context.Context) {
	deleted, err := j.repo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Error purging expired sessions: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("✅ Purged %d expired sessions", deleted)
	}
}
