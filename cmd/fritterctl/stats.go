package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/fritterapp/fritter-server/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count every stored entity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, injector do.Injector) error {
			stats, err := do.MustInvoke[*service.StatsService](injector).Stats(ctx)
			if err != nil {
				return err
			}

			label := color.New(color.FgCyan)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, row := range []struct {
				name  string
				count int
			}{
				{"Users", stats.Users},
				{"Freets", stats.Freets},
				{"Likes", stats.Likes},
				{"Follows", stats.Follows},
				{"Personas", stats.Personas},
				{"Bookmarks", stats.Bookmarks},
				{"Tags", stats.Tags},
			} {
				fmt.Fprintf(w, "%s\t%s\n", label.Sprint(row.name), humanize.Comma(int64(row.count)))
			}
			return w.Flush()
		})
	},
}
