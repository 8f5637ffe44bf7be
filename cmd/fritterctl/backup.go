package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/fritterapp/fritter-server/internal/backup"
)

var (
	backupOutput string
	restoreDry   bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a backup archive of the graph and every freet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, injector do.Injector) error {
			result, err := do.MustInvoke[*backup.BackupService](injector).Create(ctx, backup.BackupOptions{
				OutputPath: backupOutput,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s Backup written to %s (%s in %s)\n",
				color.GreenString("✓"),
				color.CyanString(result.Path),
				humanize.Bytes(uint64(result.Size)),
				result.Duration.Round(time.Millisecond),
			)
			printCounts(result.Counts)
			fmt.Println(color.HiBlackString("sha256 " + result.Checksum))
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the data directory, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, injector do.Injector) error {
			backups, err := do.MustInvoke[*backup.BackupService](injector).List(ctx)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println(color.HiBlackString("No backups."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, b := range backups {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					color.CyanString(b.ID),
					humanize.Bytes(uint64(b.Size)),
					color.HiBlackString(humanize.Time(b.CreatedAt)),
				)
			}
			return w.Flush()
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file|id>",
	Short: "Restore a backup into an empty data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, injector do.Injector) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				path = do.MustInvoke[*backup.BackupService](injector).GetPath(args[0])
			}

			result, err := do.MustInvoke[*backup.RestoreService](injector).Restore(ctx, path, backup.RestoreOptions{
				DryRun: restoreDry,
			})
			if err != nil {
				return err
			}

			verb := "Restored"
			if restoreDry {
				verb = "Verified"
			}
			fmt.Printf("%s %s backup from %s\n",
				color.GreenString("✓"),
				verb,
				color.HiBlackString(humanize.Time(result.Manifest.CreatedAt)),
			)
			printCounts(result.Counts)
			if result.Skipped > 0 {
				fmt.Println(color.YellowString("  skipped %s already present",
					english.Plural(result.Skipped, "freet", "")))
			}
			return nil
		})
	},
}

func printCounts(c backup.EntityCounts) {
	for _, line := range []struct {
		count int
		noun  string
	}{
		{c.Users, "user"},
		{c.Freets, "freet"},
		{c.Likes, "like"},
		{c.Follows, "follow"},
		{c.Personas, "persona"},
		{c.Bookmarks, "bookmark"},
		{c.Tags, "tag"},
	} {
		fmt.Printf("  %s\n", english.Plural(line.count, line.noun, ""))
	}
}

func init() {
	backupCreateCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Archive path (default: <data>/backups/backup-<time>.fritter.zip)")
	backupRestoreCmd.Flags().BoolVar(&restoreDry, "dry-run", false, "Read the archive without writing")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
