package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/fritterapp/fritter-server/internal/service"
)

var confirmDelete bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and remove accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account with its follow counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, injector do.Injector) error {
			users, err := do.MustInvoke[*service.UserService](injector).ListUsers(ctx)
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Println(color.HiBlackString("No accounts."))
				return nil
			}

			header := color.New(color.FgCyan, color.Bold)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, header.Sprint("USERNAME")+"\t"+header.Sprint("JOINED")+"\t"+
				header.Sprint("FOLLOWING")+"\t"+header.Sprint("FOLLOWERS")+"\t"+header.Sprint("ID"))
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					u.Username,
					u.DateJoined,
					humanize.Comma(int64(u.Following)),
					humanize.Comma(int64(u.Followers)),
					color.HiBlackString(u.ID),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(english.Plural(len(users), "account", ""))
			return nil
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account and everything it owns",
	Long: `Delete an account together with its freets, bookmarks, tags,
personas, likes and every follow it appears in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		if !confirmDelete {
			return fmt.Errorf("refusing to delete %q without --yes", username)
		}

		return withContainer(func(ctx context.Context, injector do.Injector) error {
			result, err := do.MustInvoke[*service.UserService](injector).DeleteUserByUsername(ctx, username)
			if err != nil {
				return err
			}

			fmt.Printf("%s Deleted %s\n", color.GreenString("✓"), color.CyanString(username))
			for _, line := range []struct {
				count int
				noun  string
			}{
				{result.Freets, "freet"},
				{result.Bookmarks, "bookmark"},
				{result.Personas, "persona"},
				{result.Follows, "follow"},
				{result.Likes, "like"},
			} {
				fmt.Printf("  %s\n", english.Plural(line.count, line.noun, ""))
			}
			return nil
		})
	},
}

func init() {
	usersDeleteCmd.Flags().BoolVarP(&confirmDelete, "yes", "y", false, "Confirm the deletion")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
