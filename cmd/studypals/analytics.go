package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/studypals/studypals/internal/models"
)

// historyExport is the layout of an exported study history.
type historyExport struct {
	UserID       string                `json:"userId"`
	Sessions     []models.StudySession `json:"sessions"`
	QuizSessions []models.QuizSession  `json:"quizSessions"`
	Reviews      []models.ReviewRecord `json:"reviews"`
}

func newAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Compute an analytics snapshot from an exported history",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := snapshotFromHistory(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snapshot)
		},
	}
	addHistoryFlags(cmd)
	return cmd
}

func newInsightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print performance level, strong and struggling subjects from an exported history",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := snapshotFromHistory(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snapshot.Insights())
		},
	}
	addHistoryFlags(cmd)
	return cmd
}

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("history", "", "Path to the exported history JSON, or - for stdin")
	cmd.Flags().String("user", "", "Only use records of this user (defaults to the export's userId)")
	_ = cmd.MarkFlagRequired("history")
}

func snapshotFromHistory(cmd *cobra.Command) (models.StudyAnalytics, error) {
	calc, err := calculatorFromFlags(cmd)
	if err != nil {
		return models.StudyAnalytics{}, err
	}

	path, _ := cmd.Flags().GetString("history")
	data, err := readFile(path)
	if err != nil {
		return models.StudyAnalytics{}, fmt.Errorf("read history: %w", err)
	}

	var export historyExport
	if err := json.Unmarshal(data, &export); err != nil {
		return models.StudyAnalytics{}, fmt.Errorf("decode history %s: %w", path, err)
	}

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		userID = export.UserID
	}
	if userID == "" {
		return models.StudyAnalytics{}, fmt.Errorf("history has no userId; pass --user")
	}

	sessions, quizzes, reviews := export.forUser(userID)
	return calc.CalculateUserAnalytics(userID, sessions, quizzes, reviews), nil
}

// forUser drops records that belong to someone else. Records without an
// owner are kept.
func (h historyExport) forUser(userID string) ([]models.StudySession, []models.QuizSession, []models.ReviewRecord) {
	sessions := make([]models.StudySession, 0, len(h.Sessions))
	for _, s := range h.Sessions {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	quizzes := make([]models.QuizSession, 0, len(h.QuizSessions))
	for _, q := range h.QuizSessions {
		if q.UserID == "" || q.UserID == userID {
			quizzes = append(quizzes, q)
		}
	}
	reviews := make([]models.ReviewRecord, 0, len(h.Reviews))
	for _, r := range h.Reviews {
		if r.UserID == "" || r.UserID == userID {
			reviews = append(reviews, r)
		}
	}
	return sessions, quizzes, reviews
}
