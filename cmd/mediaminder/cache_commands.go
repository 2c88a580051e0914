package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediaminder/internal/media"
)

type cacheStatsOutput struct {
	DetailCachePath        string             `json:"detailCachePath,omitempty"`
	DetailEntries          map[media.Type]int `json:"detailEntries,omitempty"`
	RecommendationsPath    string             `json:"recommendationsPath"`
	RecommendationsCurrent bool               `json:"recommendationsCurrent"`
	RecommendationsAt      *time.Time         `json:"recommendationsComputedAt,omitempty"`
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain local caches",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache locations and sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				output := cacheStatsOutput{RecommendationsPath: a.cfg.Recommendations.CachePath}
				if a.details != nil {
					stats, err := a.details.Stats(cmd.Context())
					if err != nil {
						return err
					}
					output.DetailCachePath = a.details.Path()
					output.DetailEntries = stats
				}
				if at, ok := a.cache.ComputedAt(cmd.Context()); ok {
					output.RecommendationsAt = &at
					_, output.RecommendationsCurrent = a.cache.Get(cmd.Context())
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, output)
				}

				rows := make([][]string, 0, len(media.AllTypes)+1)
				if a.details == nil {
					rows = append(rows, []string{"Detail cache", "disabled"})
				} else {
					for _, t := range media.AllTypes {
						rows = append(rows, []string{t.Label() + " details", fmt.Sprintf("%d", output.DetailEntries[t])})
					}
				}
				recState := "empty"
				if output.RecommendationsAt != nil {
					recState = "expired"
					if output.RecommendationsCurrent {
						recState = "current"
					}
					recState += " (" + output.RecommendationsAt.Local().Format("2006-01-02 15:04") + ")"
				}
				rows = append(rows, []string{"Recommendations", recState})
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Cache", "State"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete catalog details older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if a.details == nil {
					printNotice(cmd, noticeInfo, "Detail cache is disabled", nil)
					return nil
				}
				age := olderThan
				if age <= 0 {
					age = a.cfg.DetailCacheTTL()
				}
				removed, err := a.details.Prune(cmd.Context(), time.Now().Add(-age))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int64{"removed": removed})
				}
				printNotice(cmd, noticeOK, fmt.Sprintf("Pruned %d cached detail entries older than %s", removed, age), nil)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age threshold (defaults to detail_cache.ttl_hours)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete cached catalog details and recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				var removed int64
				if a.details != nil {
					n, err := a.details.Clear(cmd.Context())
					if err != nil {
						return err
					}
					removed = n
				}
				if err := a.cache.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear recommendations: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int64{"removed": removed})
				}
				printNotice(cmd, noticeOK, fmt.Sprintf("Cleared %d cached detail entries and the recommendation cache", removed), nil)
				return nil
			})
		},
	}
}
