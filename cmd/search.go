package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/market-search-scraper/internal/client"
	"github.com/JakeFAU/market-search-scraper/internal/product"
	"github.com/JakeFAU/market-search-scraper/internal/view"
)

const maxTitleRunes = 60

func newSearchCmd() *cobra.Command {
	var (
		server        string
		sortFlag      string
		hideSponsored bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Query the scrape API and print the results.",
		Example: `  market-search-scraper search "wireless mouse" --sort price-asc --hide-sponsored
  market-search-scraper search laptop --server http://scraper.internal:8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := view.ParseSortMode(sortFlag)
			if err != nil {
				return err
			}
			if server == "" {
				server = fmt.Sprintf("http://localhost:%d", envFrom(cmd).cfg.Server.Port)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			keyword := strings.Join(args, " ")
			session := client.NewSession(client.New(server))
			session.SetSort(mode)
			session.SetHideSponsored(hideSponsored)

			envFrom(cmd).logger.Debug("searching", zap.String("server", server), zap.String("keyword", keyword))
			if err := session.Search(ctx, keyword); err != nil {
				return fmt.Errorf("an error occurred: %w", err)
			}
			return render(cmd.OutOrStdout(), keyword, session)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "scrape API base URL (default http://localhost:<server.port>)")
	cmd.Flags().StringVar(&sortFlag, "sort", "none", "none, price-asc, price-desc or rating-desc")
	cmd.Flags().BoolVar(&hideSponsored, "hide-sponsored", false, "omit sponsored results")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall request timeout")
	return cmd
}

// render prints the derived view of session as an aligned table.
func render(w io.Writer, keyword string, session *client.Session) error {
	raw := session.State().Products()
	if len(raw) == 0 {
		_, err := fmt.Fprintf(w, "No products found for %q. Try a different term.\n", keyword)
		return err
	}

	shown := session.View()
	if _, err := fmt.Fprintf(w, "Found %d products, showing %d.\n\n", len(raw), len(shown)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tPRICE\tRATING\tREVIEWS\tURL")
	for i, p := range shown {
		title := truncate(p.Title, maxTitleRunes)
		if p.IsSponsored {
			title = "[Sponsored] " + title
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			title,
			orDash(p.Price),
			orDefault(p.Rating, "No rating"),
			orDash(p.Reviews),
			p.ProductURL,
		)
	}
	return tw.Flush()
}

func orDash(s *string) string {
	return orDefault(s, "-")
}

func orDefault(s *string, def string) string {
	if v := product.Value(s); v != "" {
		return v
	}
	return def
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
