package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediaminder/internal/catalog"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
	"mediaminder/internal/tracking"
)

type trackListOutput struct {
	Counts map[media.Type]int  `json:"counts"`
	Items  []media.TrackedItem `json:"items"`
}

func newTrackCommand(ctx *commandContext) *cobra.Command {
	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Manage tracked books, movies, and TV shows",
	}

	trackCmd.AddCommand(newTrackListCommand(ctx))
	trackCmd.AddCommand(newTrackAddCommand(ctx))
	trackCmd.AddCommand(newTrackStatusCommand(ctx))
	trackCmd.AddCommand(newTrackRateCommand(ctx))
	trackCmd.AddCommand(newTrackRemoveCommand(ctx))
	trackCmd.AddCommand(newTrackShowCommand(ctx))
	return trackCmd
}

func newTrackListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag, typeFlag, sortFlag, orderFlag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked media",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(statusFlag, typeFlag, sortFlag, orderFlag)
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := a.requireTracked(cmd); err != nil {
					return err
				}
				items := a.tracker.Filter(filter)
				if ctx.jsonOutput() {
					return writeJSON(cmd, trackListOutput{Counts: a.tracker.Counts(), Items: items})
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No tracked media matches")
					return nil
				}
				fmt.Fprintln(out, renderTracked(items))
				fmt.Fprintln(out, countsLine(a.tracker.Counts()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show this status (want_to_view, in_progress, finished, none)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Only show this media type (book, movie, tv)")
	cmd.Flags().StringVar(&sortFlag, "sort", string(tracking.SortUpdatedAt), "Sort by updated_at, added_at, title, or rating")
	cmd.Flags().StringVar(&orderFlag, "order", string(tracking.OrderDesc), "Sort order (asc or desc)")
	return cmd
}

func parseFilter(statusFlag, typeFlag, sortFlag, orderFlag string) (tracking.Filter, error) {
	var filter tracking.Filter
	if s := strings.TrimSpace(statusFlag); s != "" && s != "all" {
		status, err := media.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if t := strings.TrimSpace(typeFlag); t != "" && t != "all" {
		mediaType, err := media.ParseType(t)
		if err != nil {
			return filter, err
		}
		filter.Type = mediaType
	}
	field, err := tracking.ParseSortField(sortFlag)
	if err != nil {
		return filter, err
	}
	order, err := tracking.ParseSortOrder(orderFlag)
	if err != nil {
		return filter, err
	}
	filter.Sort = field
	filter.Order = order
	return filter, nil
}

func countsLine(counts map[media.Type]int) string {
	parts := make([]string, 0, len(media.AllTypes))
	for _, t := range media.AllTypes {
		parts = append(parts, fmt.Sprintf("%s: %d", t.Label(), counts[t]))
	}
	return strings.Join(parts, "  ")
}

func newTrackAddCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "add <type> <id>",
		Short: "Track a catalog item (adding a tracked item updates its status)",
		Example: "  mediaminder track add movie 550\n" +
			"  mediaminder track add book OL82586W --status in_progress",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := media.ParseType(args[0])
			if err != nil {
				return err
			}
			status, err := media.ParseStatus(statusFlag)
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				item, err := a.catalog.Details(cmd.Context(), t, args[1])
				if err != nil {
					return fmt.Errorf("look up %s %s: %w", t, args[1], err)
				}
				if err := a.requireTracked(cmd); err != nil {
					return err
				}
				if err := a.tracker.Add(cmd.Context(), item, status); err != nil {
					return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
				}
				return reportTracked(cmd, ctx, a, item)
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", string(media.StatusWantToView), "Initial status")
	return cmd
}

func newTrackStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a tracked item",
		Long:  "The id may be the tracked id, a compound id such as movie_550, or a catalog id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := media.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := a.requireTracked(cmd); err != nil {
					return err
				}
				if err := a.tracker.UpdateStatus(cmd.Context(), args[0], status); err != nil {
					return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
				}
				return reportLookup(cmd, ctx, a, args[0])
			})
		},
	}
}

func newTrackRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <stars>",
		Short: "Rate an item from 0 to 5 stars; repeating the current rating clears it",
		Long: "Rates a tracked item. A compound id (book_OL82586W, movie_550) of an\n" +
			"untracked item adds it without a status and applies the rating.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			star, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || !media.ValidRating(star) {
				return fmt.Errorf("stars must be a number from 0 to %d", media.MaxRating)
			}
			return ctx.withApp(func(a *app) error {
				if err := a.requireTracked(cmd); err != nil {
					return err
				}
				if _, ok := a.tracker.Lookup(args[0]); ok {
					if err := a.tracker.UpdateRating(cmd.Context(), args[0], star); err != nil {
						return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
					}
					return reportLookup(cmd, ctx, a, args[0])
				}

				compound, err := mediaid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("%q is not tracked; use a compound id like movie_550 to rate a new item: %w", args[0], err)
				}
				item, err := a.catalog.Details(cmd.Context(), compound.Type, compound.ExternalID)
				if err != nil {
					return fmt.Errorf("look up %s: %w", compound, err)
				}
				if err := a.tracker.Rate(cmd.Context(), item, star); err != nil {
					return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
				}
				return reportTracked(cmd, ctx, a, item)
			})
		},
	}
}

func newTrackRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.requireTracked(cmd); err != nil {
					return err
				}
				item, _ := a.tracker.Lookup(args[0])
				if err := a.tracker.Remove(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("%s: %w", a.tracker.LastError(), err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"removed": item})
				}
				printNotice(cmd, noticeOK, fmt.Sprintf("Removed %s", item.Title), nil)
				return nil
			})
		},
	}
}

func newTrackShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type> <id>",
		Short: "Show catalog details and tracking state for an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := media.ParseType(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				item, err := a.catalog.Details(cmd.Context(), t, args[1])
				if err != nil {
					return fmt.Errorf("look up %s %s: %w", t, args[1], err)
				}
				view := newItemView(item, a.catalog.Images())
				if a.loadTracked(cmd) {
					if tracked, ok := a.tracker.Item(item.Kind(), item.ExternalID()); ok {
						view.Status = string(tracked.Status)
						view.Rating = tracked.Rating
					}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				printItemDetails(cmd, view)
				return nil
			})
		},
	}
}

func printItemDetails(cmd *cobra.Command, view itemView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", view.Title, yearText(view.Year))
	fmt.Fprintf(out, "  ID:       %s\n", view.ID)
	fmt.Fprintf(out, "  Type:     %s\n", view.MediaType.Label())
	if len(view.Creators) > 0 {
		fmt.Fprintf(out, "  By:       %s\n", strings.Join(view.Creators, ", "))
	}
	if len(view.Genres) > 0 {
		fmt.Fprintf(out, "  Genres:   %s\n", strings.Join(view.Genres, ", "))
	}
	if len(view.Subjects) > 0 {
		subjects := view.Subjects
		if len(subjects) > 8 {
			subjects = subjects[:8]
		}
		fmt.Fprintf(out, "  Subjects: %s\n", strings.Join(subjects, ", "))
	}
	if view.ImageURL != "" {
		fmt.Fprintf(out, "  Image:    %s\n", view.ImageURL)
	}
	if view.Status != "" {
		fmt.Fprintf(out, "  Status:   %s\n", media.Status(view.Status).DisplayText(view.MediaType))
		fmt.Fprintf(out, "  Rating:   %s\n", stars(view.Rating))
	} else {
		fmt.Fprintln(out, "  Status:   not tracked")
	}
	if overview := strings.TrimSpace(view.Overview); overview != "" {
		fmt.Fprintf(out, "\n%s\n", overview)
	}
}

func reportTracked(cmd *cobra.Command, ctx *commandContext, a *app, item catalog.Item) error {
	tracked, ok := a.tracker.Item(item.Kind(), item.ExternalID())
	if !ok {
		printNotice(cmd, noticeWarn, fmt.Sprintf("%s saved but not yet listed by the server", item.DisplayTitle()), nil)
		return nil
	}
	return reportItem(cmd, ctx, tracked)
}

func reportLookup(cmd *cobra.Command, ctx *commandContext, a *app, id string) error {
	tracked, ok := a.tracker.Lookup(id)
	if !ok {
		return nil
	}
	return reportItem(cmd, ctx, tracked)
}

func reportItem(cmd *cobra.Command, ctx *commandContext, item media.TrackedItem) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, item)
	}
	printNotice(cmd, noticeOK, fmt.Sprintf("%s: %s, rating %s", item.Title, item.Status.DisplayText(item.MediaType), stars(item.Rating)), nil)
	return nil
}
