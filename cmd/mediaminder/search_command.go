package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediaminder/internal/catalog"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/search"
)

type searchOutput struct {
	Query      string     `json:"query"`
	MediaType  media.Type `json:"mediaType"`
	TotalCount int        `json:"totalCount"`
	Results    []itemView `json:"results"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var interactive bool

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search the book and video catalogs",
		Long: "Search OpenLibrary for books and TMDB for movies and TV shows.\n\n" +
			"With --interactive, queries are read from stdin one per line and a search\n" +
			"starts only after input has been quiet for half a second.",
	}
	searchCmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "Read queries from stdin and search as you type")

	searchCmd.AddCommand(newSearchTypeCommand(ctx, media.TypeBook, "books", []string{"book"}, &interactive))
	searchCmd.AddCommand(newSearchTypeCommand(ctx, media.TypeMovie, "movies", []string{"movie"}, &interactive))
	searchCmd.AddCommand(newSearchTypeCommand(ctx, media.TypeTVShow, "tv", []string{"shows", "series"}, &interactive))
	return searchCmd
}

func newSearchTypeCommand(ctx *commandContext, t media.Type, use string, aliases []string, interactive *bool) *cobra.Command {
	return &cobra.Command{
		Use:     use + " [query]",
		Aliases: aliases,
		Short:   fmt.Sprintf("Search %s", strings.ToLower(t.Label())+"s"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if *interactive {
					return runInteractiveSearch(cmd, ctx, a, t)
				}
				query := strings.TrimSpace(strings.Join(args, " "))
				if err := search.ValidateQuery(t, query); err != nil {
					return err
				}
				result, err := a.catalog.Search(cmd.Context(), t, query)
				if err != nil {
					return fmt.Errorf("search %s: %w", use, err)
				}
				return printSearchResult(cmd, ctx, a, t, query, result)
			})
		},
	}
}

func printSearchResult(cmd *cobra.Command, ctx *commandContext, a *app, t media.Type, query string, result catalog.SearchResult) error {
	views := itemViews(result.Items, a.catalog.Images())
	if ctx.jsonOutput() {
		return writeJSON(cmd, searchOutput{Query: query, MediaType: t, TotalCount: result.TotalCount, Results: views})
	}
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintf(out, "No %s found for %q\n", strings.ToLower(t.Label())+"s", query)
		return nil
	}
	fmt.Fprintf(out, "%d of %d results for %q\n", len(views), result.TotalCount, query)
	fmt.Fprintln(out, renderItems(views))
	return nil
}

// runInteractiveSearch debounces stdin lines into catalog searches. Results
// for superseded queries are dropped.
func runInteractiveSearch(cmd *cobra.Command, ctx *commandContext, a *app, t media.Type) error {
	runCtx := cmd.Context()
	logger := logging.WithContext(runCtx, a.logger)
	debouncer := search.NewDebouncer(search.DefaultDelay, func(c context.Context, query string) (catalog.SearchResult, error) {
		if err := search.ValidateQuery(t, query); err != nil {
			return catalog.SearchResult{}, err
		}
		return a.catalog.Search(c, t, query)
	}, a.logger)

	var wg sync.WaitGroup
	var printErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		for res := range debouncer.Results() {
			if res.Stale {
				logger.Debug("dropping stale search result", logging.String("query", res.Query))
				continue
			}
			if res.Err != nil {
				printNotice(cmd, noticeWarn, fmt.Sprintf("search %q failed: %v", res.Query, res.Err), res.Err)
				continue
			}
			if err := printSearchResult(cmd, ctx, a, t, res.Query, res.Value); err != nil && printErr == nil {
				printErr = err
			}
		}
	}()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if runCtx.Err() != nil {
			break
		}
		debouncer.Trigger(runCtx, scanner.Text())
	}
	debouncer.Wait()
	debouncer.Stop()
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	return printErr
}
