package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaminder/internal/catalog"
	"mediaminder/internal/media"
)

type releasesOutput struct {
	Releases   map[media.Type][]itemView `json:"releases,omitempty"`
	Highlights []itemView                `json:"highlights,omitempty"`
}

func newReleasesCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var refresh bool
	var highlights bool

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "Show recent releases",
		Long: "Lists movies and TV shows released in the last three months and books\n" +
			"first published this year or last year. --highlights picks a short mix\n" +
			"of the newest titles across all types.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := media.AllTypes
			if t := strings.TrimSpace(typeFlag); t != "" && t != "all" {
				if highlights {
					return errors.New("--highlights covers every media type; drop --type")
				}
				mediaType, err := media.ParseType(t)
				if err != nil {
					return err
				}
				types = []media.Type{mediaType}
			}

			return ctx.withApp(func(a *app) error {
				images := a.catalog.Images()
				releases := make(map[media.Type][]catalog.Item, len(types))
				for _, t := range types {
					releases[t] = a.catalog.RecentReleases(cmd.Context(), t, refresh)
				}

				if highlights {
					views := itemViews(catalog.Highlights(releases), images)
					if ctx.jsonOutput() {
						return writeJSON(cmd, releasesOutput{Highlights: views})
					}
					return printReleaseSection(cmd, "New release highlights", views)
				}

				output := releasesOutput{Releases: make(map[media.Type][]itemView, len(types))}
				for _, t := range types {
					output.Releases[t] = itemViews(releases[t], images)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, output)
				}
				for _, t := range types {
					if err := printReleaseSection(cmd, "New "+strings.ToLower(t.Label())+"s", output.Releases[t]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "Only show this media type (book, movie, tv)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore cached release lists")
	cmd.Flags().BoolVar(&highlights, "highlights", false, "Show a short cross-type selection")
	return cmd
}

func printReleaseSection(cmd *cobra.Command, title string, views []itemView) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	if len(views) == 0 {
		fmt.Fprintln(out, "  nothing found")
		return nil
	}
	fmt.Fprintln(out, renderItems(views))
	return nil
}
