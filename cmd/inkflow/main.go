package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inkflow/internal/queue"
	"inkflow/internal/reminder"
	"inkflow/internal/repository"
	"inkflow/internal/service"
)

var version = "dev"

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// rootCommand is the cobra root plus the app its subcommands open. cobra skips
// post-run hooks when a command fails, so the app is closed by Close after
// Execute returns instead.
type rootCommand struct {
	*cobra.Command
	app *app
}

// Close releases the database and log file opened by the last command
func (r *rootCommand) Close() {
	if r.app != nil {
		r.app.close()
		r.app = nil
	}
}

func newRootCmd(v *viper.Viper) *rootCommand {
	root := &rootCommand{}

	rootCmd := &cobra.Command{
		Use:           "inkflow",
		Short:         "Leitner-box review for handwriting flashcards",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			root.app = a
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}
	root.Command = rootCmd

	flags := rootCmd.PersistentFlags()
	flags.String(FlagConfig, "", "Config file path (YAML)")
	flags.String(FlagEnvFile, "", "Env file to load (default: .env)")
	flags.String(FlagDBType, "", "Database type: sqlite, postgres or mysql")
	flags.String(FlagDBPath, "", "SQLite database path")
	flags.String(FlagDBURL, "", "PostgreSQL or MySQL connection URL")
	flags.String(FlagUser, "", "User whose cards to work on")
	flags.String(FlagLogFile, "", "Write JSON logs to this file with rotation")
	flags.BoolP(FlagVerbose, "v", false, "Enable verbose (debug) logging")

	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	_ = v.BindPFlag(FlagVerbose, flags.Lookup(FlagVerbose))

	rootCmd.AddCommand(
		newMigrateCmd(),
		newCardCmd(),
		newDueCmd(),
		newReviewCmd(),
		newBoxesCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newRemindCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			// migrations already ran while opening the database
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
}

func newCardCmd() *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	addCmd := &cobra.Command{
		Use:   "add CHAR...",
		Short: "Create one card per character, due immediately",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			image, _ := cmd.Flags().GetString(FlagImage)
			cards, err := a.cards.Add(cmd.Context(), a.cfg.UserID, args, image)
			if err != nil {
				return err
			}
			for _, c := range cards {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %q  box %d\n", c.ID, c.CorrectChar, c.Box)
			}
			return nil
		},
	}
	addCmd.Flags().String(FlagImage, "", "Image URL of the handwriting sample")

	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a card's character, image, notes or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			var edit service.CardEdit
			flags := cmd.Flags()
			if flags.Changed(FlagChar) {
				v, _ := flags.GetString(FlagChar)
				edit.Char = &v
			}
			if flags.Changed(FlagImage) {
				v, _ := flags.GetString(FlagImage)
				edit.ImageURL = &v
			}
			if flags.Changed(FlagNotes) {
				v, _ := flags.GetString(FlagNotes)
				edit.Notes = &v
			}
			if flags.Changed(FlagTags) {
				edit.Tags, _ = flags.GetStringSlice(FlagTags)
				if edit.Tags == nil {
					edit.Tags = []string{}
				}
			}
			c, err := a.cards.Edit(cmd.Context(), a.cfg.UserID, args[0], edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %q  box %d  %s\n", c.ID, c.CorrectChar, c.Box, strings.Join(c.DisplayTags(), ","))
			return nil
		},
	}
	editCmd.Flags().String(FlagChar, "", "Expected character")
	editCmd.Flags().String(FlagImage, "", "Image URL of the handwriting sample")
	editCmd.Flags().String(FlagNotes, "", "Free-form notes")
	editCmd.Flags().StringSlice(FlagTags, nil, "Comma-separated tags (empty to clear)")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.cards.Delete(cmd.Context(), a.cfg.UserID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cardCmd.AddCommand(addCmd, editCmd, deleteCmd)
	return cardCmd
}

func newDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			due, err := a.cards.Due(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(due) == 0 {
				fmt.Fprintln(out, "Nothing due. All caught up!")
				return nil
			}
			for _, c := range due {
				fmt.Fprintf(out, "%s  %q  box %d  %s\n", c.ID, c.CorrectChar, c.Box, strings.Join(c.DisplayTags(), ","))
			}
			fmt.Fprintf(out, "%d due\n", len(due))
			return nil
		},
	}
}

func newReviewCmd() *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review cards interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			modeName, _ := cmd.Flags().GetString(FlagMode)
			cardID, _ := cmd.Flags().GetString(FlagCard)

			mode, err := queue.ParseMode(modeName)
			if err != nil {
				return err
			}
			if cardID != "" {
				mode = queue.ModeSingleCard
			}
			if mode == queue.ModeReplay {
				return fmt.Errorf("replay is offered at the end of a review")
			}

			r, err := a.review.Start(cmd.Context(), a.cfg.UserID, queue.Request{Mode: mode, CardID: cardID})
			if err != nil {
				return err
			}
			return runReview(cmd.Context(), r, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	reviewCmd.Flags().String(FlagMode, "due", "Queue to review: due, mistakes or card")
	reviewCmd.Flags().String(FlagCard, "", "Review a single card by ID")
	return reviewCmd
}

func newBoxesCmd() *cobra.Command {
	boxesCmd := &cobra.Command{
		Use:   "boxes",
		Short: "Show or edit the Leitner box configuration",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List boxes in review order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			boxes, err := a.boxes.Load(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			for _, b := range boxes.Sorted() {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-12s every %d day(s)\n", b.ID, b.Name, b.IntervalDays)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append a box with twice the last interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			b, err := a.boxes.AddBox(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %d, every %d days)\n", b.Name, b.ID, b.IntervalDays)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set ID",
		Short: "Rename a box or change its interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid box id %q", args[0])
			}
			var upd service.BoxUpdate
			if cmd.Flags().Changed(FlagName) {
				name, _ := cmd.Flags().GetString(FlagName)
				upd.Name = &name
			}
			if cmd.Flags().Changed(FlagInterval) {
				days, _ := cmd.Flags().GetInt(FlagInterval)
				upd.IntervalDays = &days
			}
			if upd.Name == nil && upd.IntervalDays == nil {
				return fmt.Errorf("nothing to change: use --%s or --%s", FlagName, FlagInterval)
			}
			return a.boxes.UpdateBox(cmd.Context(), a.cfg.UserID, id, upd)
		},
	}
	setCmd.Flags().String(FlagName, "", "New box name")
	setCmd.Flags().Int(FlagInterval, 0, "New interval in days")

	removeCmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid box id %q", args[0])
			}
			return a.boxes.RemoveBox(cmd.Context(), a.cfg.UserID, id)
		},
	}

	boxesCmd.AddCommand(listCmd, addCmd, setCmd, removeCmd)
	return boxesCmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ov, err := a.analytics.Overview(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			printOverview(cmd.OutOrStdout(), ov)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent review sessions, or the answers of one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if id, _ := cmd.Flags().GetInt64(FlagSession); id > 0 {
				s, err := a.reviews.GetSession(ctx, id)
				if err != nil {
					return err
				}
				if s.UserID != a.cfg.UserID {
					return repository.ErrSessionNotFound
				}
				events, err := a.reviews.ListEvents(ctx, id)
				if err != nil {
					return err
				}
				printEvents(out, s, events)
				return nil
			}

			limit, _ := cmd.Flags().GetInt(FlagLimit)
			sessions, err := a.reviews.ListSessions(ctx, a.cfg.UserID, limit)
			if err != nil {
				return err
			}
			printSessions(out, sessions)
			return nil
		},
	}
	historyCmd.Flags().Int64(FlagSession, 0, "Show the answers of this session")
	historyCmd.Flags().Int(FlagLimit, 20, "Number of sessions to list")
	return historyCmd
}

func newRemindCmd() *cobra.Command {
	remindCmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders when cards are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			checker, err := a.reminderChecker(ctx)
			if err != nil {
				return err
			}

			if once, _ := cmd.Flags().GetBool(FlagOnce); once {
				sent, err := checker.Check(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) sent\n", sent)
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := reminder.NewScheduler(checker, a.cfg.ReminderInterval, nil, a.logger)
			if err := s.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	remindCmd.Flags().Bool(FlagOnce, false, "Check once and exit")
	return remindCmd
}

func main() {
	rootCmd := newRootCmd(viper.New())
	err := rootCmd.ExecuteContext(context.Background())
	rootCmd.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
