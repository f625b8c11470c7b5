package sqlite_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/analytics"
	apperrors "github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository/sqlite"
	"github.com/studypals/studypals/internal/testutil"
)

func TestAnalyticsRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := sqlite.NewAnalyticsRepository(db)

	now := time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)
	calc := analytics.NewCalculator(analytics.WithClock(testutil.FixedClock(now)), analytics.WithLocation(time.UTC))
	snapshot := calc.CalculateUserAnalytics("u1", []models.StudySession{studySession("s1", historyStart)}, nil, nil)

	missing, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Save(ctx, snapshot))
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snapshot, *got)

	// Saving again replaces the stored snapshot.
	next := calc.UpdateAnalyticsWithSession(snapshot, studySession("s2", historyStart.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, next))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.SessionCount)
}

func TestAnalyticsRepository_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := sqlite.NewAnalyticsRepository(db)

	_, err := db.ExecContext(ctx, `INSERT INTO analytics_snapshots (user_id, snapshot, updated_at) VALUES ('u1', '{"userId":"u1"}', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "u1")
	var decErr *apperrors.DeserializationError
	assert.True(t, stderrors.As(err, &decErr))
}
