package sqlite

import (
	"context"
	"database/sql"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Insert(ctx context.Context, rec models.ReviewRecord) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review history: card_id=%s, quality=%d, time=%.2fs", rec.CardID, rec.Quality, rec.ResponseTimeSeconds)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (id, user_id, card_id, quality, response_time_seconds, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, rec.ID, rec.UserID, rec.CardID, rec.Quality, rec.ResponseTimeSeconds, utc(rec.ReviewedAt))
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

func (r *reviewRepository) ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.ReviewRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("listing reviews: user_id=%s", filter.UserID)

	query, args, err := applyHistoryFilter(
		sqlBuilder.Select("id", "user_id", "card_id", "quality", "response_time_seconds", "reviewed_at").From("review_history"),
		"reviewed_at", filter,
	).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	reviews := []models.ReviewRecord{}
	for rows.Next() {
		var rec models.ReviewRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CardID, &rec.Quality, &rec.ResponseTimeSeconds, &rec.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		reviews = append(reviews, rec)
	}
	return reviews, rows.Err()
}
