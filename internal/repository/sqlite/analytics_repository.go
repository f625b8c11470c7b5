package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository implementation
func NewAnalyticsRepository(db *sql.DB) repository.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Get(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	log := logger.FromContext(ctx).WithPrefix("analytics_repo")
	log.Debug("getting analytics snapshot: user_id=%s", userID)

	var blob string
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM analytics_snapshots WHERE user_id = ?`, userID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no snapshot stored: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get snapshot: %v", err)
		return nil, err
	}

	snapshot, err := models.DecodeStudyAnalytics([]byte(blob))
	if err != nil {
		log.Error("stored snapshot is unreadable: user_id=%s: %v", userID, err)
		return nil, err
	}
	return &snapshot, nil
}

func (r *analyticsRepository) Save(ctx context.Context, snapshot models.StudyAnalytics) error {
	log := logger.FromContext(ctx).WithPrefix("analytics_repo")
	log.Debug("saving analytics snapshot: user_id=%s", snapshot.UserID)

	blob, err := models.EncodeStudyAnalytics(snapshot)
	if err != nil {
		log.Error("failed to encode snapshot: %v", err)
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO analytics_snapshots (user_id, snapshot, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at
`, snapshot.UserID, string(blob), utc(snapshot.LastUpdated))
	if err != nil {
		log.Error("failed to save snapshot: %v", err)
	}
	return err
}
