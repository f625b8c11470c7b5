package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

var sessionColumns = []string{"id", "user_id", "deck_id", "subject", "start_time", "end_time", "activities", "metadata"}

func (r *sessionRepository) Insert(ctx context.Context, s models.StudySession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, user_id=%s, activities=%d", s.ID, s.UserID, len(s.Activities))

	activities, err := encodeJSON(nonNilActivities(s.Activities))
	if err != nil {
		log.Error("failed to encode activities: %v", err)
		return err
	}
	metadata, err := encodeJSON(nonNilMetadata(s.Metadata))
	if err != nil {
		log.Error("failed to encode metadata: %v", err)
		return err
	}

	query, args, err := sqlBuilder.Insert("study_sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserID, s.DeckID, s.Subject, utc(s.StartTime), utc(s.EndTime), activities, metadata).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert session: %v", err)
		return insertError(err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, userID, id string) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	query, args, err := sqlBuilder.Select(sessionColumns...).
		From("study_sessions").
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: user_id=%s", filter.UserID)

	query, args, err := applyHistoryFilter(
		sqlBuilder.Select(sessionColumns...).From("study_sessions"), "start_time", filter,
	).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.StudySession, error) {
	var s models.StudySession
	var activities, metadata string
	if err := row.Scan(&s.ID, &s.UserID, &s.DeckID, &s.Subject, &s.StartTime, &s.EndTime, &activities, &metadata); err != nil {
		return models.StudySession{}, err
	}
	s.Activities = []models.SessionActivity{}
	if err := decodeJSON(activities, &s.Activities); err != nil {
		return models.StudySession{}, err
	}
	s.Metadata = map[string]any{}
	if err := decodeJSON(metadata, &s.Metadata); err != nil {
		return models.StudySession{}, err
	}
	return s, nil
}

func nonNilActivities(a []models.SessionActivity) []models.SessionActivity {
	if a == nil {
		return []models.SessionActivity{}
	}
	return a
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
