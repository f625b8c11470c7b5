package sqlite

import (
	"context"
	"database/sql"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new QuizRepository implementation
func NewQuizRepository(db *sql.DB) repository.QuizRepository {
	return &quizRepository{db: db}
}

var quizColumns = []string{"id", "user_id", "deck_id", "deck_title", "card_ids", "start_time", "end_time", "is_completed", "final_score", "answers"}

func (r *quizRepository) Insert(ctx context.Context, q models.QuizSession) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("inserting quiz: id=%s, user_id=%s, completed=%t", q.ID, q.UserID, q.IsCompleted)

	cardIDs, err := encodeJSON(q.CardIDs)
	if err != nil {
		return err
	}
	answers, err := encodeJSON(q.Answers)
	if err != nil {
		return err
	}
	var endTime sql.NullTime
	if q.EndTime != nil {
		endTime = sql.NullTime{Time: utc(*q.EndTime), Valid: true}
	}

	query, args, err := sqlBuilder.Insert("quiz_sessions").
		Columns(quizColumns...).
		Values(q.ID, q.UserID, q.DeckID, q.DeckTitle, nullJSONArray(cardIDs), utc(q.StartTime), endTime, q.IsCompleted, q.FinalScore, nullJSONArray(answers)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert quiz: %v", err)
		return insertError(err)
	}
	return nil
}

func (r *quizRepository) ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("listing quizzes: user_id=%s", filter.UserID)

	query, args, err := applyHistoryFilter(
		sqlBuilder.Select(quizColumns...).From("quiz_sessions"), "start_time", filter,
	).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list quizzes: %v", err)
		return nil, err
	}
	defer rows.Close()

	quizzes := []models.QuizSession{}
	for rows.Next() {
		var q models.QuizSession
		var cardIDs, answers string
		var endTime sql.NullTime
		if err := rows.Scan(&q.ID, &q.UserID, &q.DeckID, &q.DeckTitle, &cardIDs, &q.StartTime, &endTime, &q.IsCompleted, &q.FinalScore, &answers); err != nil {
			log.Error("failed to scan quiz row: %v", err)
			return nil, err
		}
		if endTime.Valid {
			t := endTime.Time
			q.EndTime = &t
		}
		q.CardIDs = []string{}
		q.Answers = []models.QuizAnswer{}
		if err := decodeJSON(cardIDs, &q.CardIDs); err != nil {
			return nil, err
		}
		if err := decodeJSON(answers, &q.Answers); err != nil {
			log.Error("failed to decode quiz answers: id=%s: %v", q.ID, err)
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	log.Debug("found %d quizzes", len(quizzes))
	return quizzes, rows.Err()
}

// nullJSONArray stores nil slices as empty arrays.
func nullJSONArray(s string) string {
	if s == "null" {
		return "[]"
	}
	return s
}
