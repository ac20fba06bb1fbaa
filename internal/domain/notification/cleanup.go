package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/celulas/celulas-api/internal/pkg/database"
)

// unreadRetention bounds how long an unread notice is kept
const unreadRetention = 180 * 24 * time.Hour

// CleanupResult counts the rows removed by one pass
type CleanupResult struct {
	Expired int64
	Read    int64
	Stale   int64
}

// CleanupJob handles notification retention cleanup
type CleanupJob struct {
	repo          Repository
	retentionDays int
}

// NewCleanupJob creates a cleanup job
func NewCleanupJob(repo Repository, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupJob{
		repo:          repo,
		retentionDays: retentionDays,
	}
}

// Start runs a pass immediately and then on every tick until ctx is done
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Notification cleanup job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *CleanupJob) run(ctx context.Context) {
	result, err := j.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to cleanup notifications")
		return
	}

	if result.Expired+result.Read+result.Stale > 0 {
		log.Info().
			Int64("expired", result.Expired).
			Int64("read", result.Read).
			Int64("stale_unread", result.Stale).
			Int("retention_days", j.retentionDays).
			Msg("Cleaned up notifications")
	}
}

// RunOnce applies every retention rule once. Unread notices older than
// unreadRetention go too.
func (j *CleanupJob) RunOnce(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	now := database.Now()

	var err error
	if result.Expired, err = j.repo.DeleteExpired(ctx, now); err != nil {
		return result, err
	}
	if result.Read, err = j.repo.DeleteReadBefore(ctx, now.AddDate(0, 0, -j.retentionDays)); err != nil {
		return result, err
	}
	if result.Stale, err = j.repo.DeleteBefore(ctx, now.Add(-unreadRetention)); err != nil {
		return result, err
	}
	return result, nil
}
