package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

var flashcardColumns = []string{
	"id", "user_id", "deck_id", "front", "back", "difficulty", "due_at",
	"interval_days", "ease_factor", "times_reviewed", "times_correct", "created_at",
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: id=%s, user_id=%s", c.ID, c.UserID)

	query, args, err := sqlBuilder.Insert("flashcards").
		Columns(flashcardColumns...).
		Values(c.ID, c.UserID, c.DeckID, c.Front, c.Back, c.Difficulty, utc(c.DueAt),
			c.IntervalDays, c.EaseFactor, c.TimesReviewed, c.TimesCorrect, utc(c.CreatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return err
	}
	return nil
}

func (r *flashcardRepository) Get(ctx context.Context, userID, id string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%s, user_id=%s", id, userID)

	query, args, err := sqlBuilder.Select(flashcardColumns...).
		From("flashcards").
		Where("id = ? AND user_id = ?", id, userID).
		ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanFlashcard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s, interval=%d, ease=%.2f", c.ID, c.IntervalDays, c.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET due_at = ?, interval_days = ?, ease_factor = ?, times_reviewed = ?, times_correct = ?
WHERE id = ? AND user_id = ?
`, utc(c.DueAt), c.IntervalDays, c.EaseFactor, c.TimesReviewed, c.TimesCorrect, c.ID, c.UserID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
	}
	return err
}

// NextDue returns up to limit cards due at now, most overdue first.
func (r *flashcardRepository) NextDue(ctx context.Context, userID string, now time.Time, limit int) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("fetching next flashcards: user_id=%s, limit=%d", userID, limit)

	if limit <= 0 {
		limit = 1
	}
	query, args, err := sqlBuilder.Select(flashcardColumns...).
		From("flashcards").
		Where("user_id = ?", userID).
		Where("due_at <= ?", utc(now)).
		OrderBy("due_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d due flashcards", len(cards))
	return cards, rows.Err()
}

func scanFlashcard(row rowScanner) (models.Flashcard, error) {
	var c models.Flashcard
	err := row.Scan(&c.ID, &c.UserID, &c.DeckID, &c.Front, &c.Back, &c.Difficulty, &c.DueAt,
		&c.IntervalDays, &c.EaseFactor, &c.TimesReviewed, &c.TimesCorrect, &c.CreatedAt)
	return c, err
}
