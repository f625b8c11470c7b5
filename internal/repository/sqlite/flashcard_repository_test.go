package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
	"github.com/studypals/studypals/internal/repository/sqlite"
	"github.com/studypals/studypals/internal/testutil"
)

type FlashcardRepositorySuite struct {
	suite.Suite
	db      *sql.DB
	repo    repository.FlashcardRepository
	reviews repository.ReviewRepository
}

func (s *FlashcardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewFlashcardRepository(s.db)
	s.reviews = sqlite.NewReviewRepository(s.db)
}

func (s *FlashcardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

var cardTime = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

func newCard(id, userID string, due time.Time) models.Flashcard {
	return models.Flashcard{
		ID:         id,
		UserID:     userID,
		DeckID:     "d1",
		Front:      "front " + id,
		Back:       "back " + id,
		Difficulty: 3,
		DueAt:      due,
		EaseFactor: 2.5,
		CreatedAt:  cardTime,
	}
}

func (s *FlashcardRepositorySuite) TestInsertAndUpdate() {
	ctx := context.Background()
	card := newCard("c1", "u1", cardTime)
	s.Require().NoError(s.repo.Insert(ctx, card))

	card.IntervalDays = 6
	card.EaseFactor = 2.6
	card.TimesReviewed = 1
	card.TimesCorrect = 1
	card.DueAt = cardTime.Add(6 * 24 * time.Hour)
	s.Require().NoError(s.repo.Update(ctx, card))

	got, err := s.repo.Get(ctx, "u1", "c1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(6, got.IntervalDays)
	s.Assert().Equal(2.6, got.EaseFactor)
	s.Assert().Equal(1, got.TimesCorrect)
	s.Assert().True(card.DueAt.Equal(got.DueAt))
	s.Assert().Equal("front c1", got.Front)
}

func (s *FlashcardRepositorySuite) TestGetIsScopedToUser() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, newCard("c1", "u1", cardTime)))

	got, err := s.repo.Get(ctx, "u2", "c1")
	s.Require().NoError(err)
	s.Assert().Nil(got)

	got, err = s.repo.Get(ctx, "u1", "missing")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *FlashcardRepositorySuite) TestNextDue() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, newCard("later", "u1", cardTime.Add(24*time.Hour))))
	s.Require().NoError(s.repo.Insert(ctx, newCard("recent", "u1", cardTime.Add(-time.Hour))))
	s.Require().NoError(s.repo.Insert(ctx, newCard("oldest", "u1", cardTime.Add(-48*time.Hour))))
	s.Require().NoError(s.repo.Insert(ctx, newCard("other", "u2", cardTime.Add(-48*time.Hour))))

	cards, err := s.repo.NextDue(ctx, "u1", cardTime, 10)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal("oldest", cards[0].ID)
	s.Assert().Equal("recent", cards[1].ID)

	cards, err = s.repo.NextDue(ctx, "u1", cardTime, 1)
	s.Require().NoError(err)
	s.Assert().Len(cards, 1)

	cards, err = s.repo.NextDue(ctx, "u3", cardTime, 10)
	s.Require().NoError(err)
	s.Assert().Empty(cards)
}

func (s *FlashcardRepositorySuite) TestReviewHistory() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Insert(ctx, newCard("c1", "u1", cardTime)))

	for i, q := range []int{0, 2, 3} {
		s.Require().NoError(s.reviews.Insert(ctx, models.ReviewRecord{
			ID:                  string(rune('a' + i)),
			UserID:              "u1",
			CardID:              "c1",
			Quality:             q,
			ResponseTimeSeconds: 4.5,
			ReviewedAt:          cardTime.Add(time.Duration(i) * time.Hour),
		}))
	}

	since := cardTime.Add(30 * time.Minute)
	got, err := s.reviews.ListByUser(ctx, models.HistoryFilter{UserID: "u1", Since: &since})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Assert().Equal(2, got[0].Quality)
	s.Assert().Equal(3, got[1].Quality)
	s.Assert().Equal(4.5, got[1].ResponseTimeSeconds)
}

func (s *FlashcardRepositorySuite) TestReviewRejectsUnknownCard() {
	err := s.reviews.Insert(context.Background(), models.ReviewRecord{
		ID: "r1", UserID: "u1", CardID: "nope", Quality: 1, ReviewedAt: cardTime,
	})
	s.Assert().Error(err, "foreign key should reject reviews of unknown cards")
}

func TestFlashcardRepositorySuite(t *testing.T) {
	suite.Run(t, new(FlashcardRepositorySuite))
}
