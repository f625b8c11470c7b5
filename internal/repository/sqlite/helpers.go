// Package sqlite implements the repository interfaces on SQLite.
package sqlite

import (
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// applyHistoryFilter narrows a listing to one user and the optional
// [Since, Until) window on timeColumn, ordered oldest first. A non-positive
// Limit returns the whole history.
func applyHistoryFilter(query squirrel.SelectBuilder, timeColumn string, filter models.HistoryFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{timeColumn: filter.Since.UTC()})
	}
	if filter.Until != nil {
		query = query.Where(squirrel.Lt{timeColumn: filter.Until.UTC()})
	}

	query = query.OrderBy(timeColumn+" ASC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	return query
}

// insertError wraps primary-key and unique violations in
// repository.ErrDuplicate.
func insertError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// utc normalises times before they are written so stored values compare
// lexically.
func utc(t time.Time) time.Time {
	return t.UTC()
}
