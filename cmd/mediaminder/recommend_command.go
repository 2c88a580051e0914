package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediaminder/internal/recommend"
)

type recommendOutput struct {
	ComputedAt      *time.Time                 `json:"computedAt,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest books, movies, and TV shows based on what you track",
		Long: "Builds suggestions from the genres and subjects of your highly rated and\n" +
			"finished items. Results are cached for the configured TTL (one hour by\n" +
			"default); --refresh recomputes them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				a.loadTracked(cmd)
				recs := a.engine.Recommend(cmd.Context(), a.tracker.All(), refresh)

				var computedAt *time.Time
				if at, ok := a.cache.ComputedAt(cmd.Context()); ok {
					computedAt = &at
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, recommendOutput{ComputedAt: computedAt, Recommendations: recs})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderRecommendations(recs))
				if computedAt != nil {
					fmt.Fprintf(out, "Computed %s\n", computedAt.Local().Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore cached recommendations")
	return cmd
}
