package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/studypals/studypals/internal/analytics"
	"github.com/studypals/studypals/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studypals",
		Short:         "StudyPals analytics tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(level)),
				logger.WithOutput(cmd.ErrOrStderr()),
			))
		},
	}

	root.PersistentFlags().String("log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().String("timezone", "UTC", "IANA zone that decides study days and weeks")
	root.PersistentFlags().String("now", "", "Evaluate as of this RFC 3339 instant instead of the current time")
	root.PersistentFlags().Int("recent-window", analytics.DefaultRecentScoreWindow, "Quiz scores kept per subject")

	root.AddCommand(newAnalyticsCmd())
	root.AddCommand(newInsightsCmd())
	root.AddCommand(newRecomputeCmd())
	return root
}

// calculatorFromFlags builds a Calculator from the persistent flags.
func calculatorFromFlags(cmd *cobra.Command) (*analytics.Calculator, error) {
	zone, _ := cmd.Flags().GetString("timezone")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone %q: %w", zone, err)
	}

	window, _ := cmd.Flags().GetInt("recent-window")
	if window < 1 {
		return nil, fmt.Errorf("--recent-window must be at least 1")
	}

	opts := []analytics.Option{
		analytics.WithLocation(loc),
		analytics.WithRecentScoreWindow(window),
	}
	if raw, _ := cmd.Flags().GetString("now"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --now %q: %w", raw, err)
		}
		opts = append(opts, analytics.WithClock(func() time.Time { return at }))
	}
	return analytics.NewCalculator(opts...), nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
