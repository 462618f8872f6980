package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/libraryhub/circulation/internal/app"
	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

var (
	flagLabel  string
	flagSearch string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the issued-books list with due status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		label := lifecycle.Label(flagLabel)
		if flagLabel != "" && !label.Valid() {
			return fmt.Errorf("unknown label %q", flagLabel)
		}

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(context.Background()) }()

		views, err := a.Circulation.ListIssued(cmd.Context(), ports.IssuedFilter{Search: flagSearch, Label: label})
		if err != nil {
			return err
		}
		writeIssued(cmd.OutOrStdout(), views)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&flagLabel, "label", "", "Only show one status: active, due_soon, due_today, overdue, returned")
	reportCmd.Flags().StringVarP(&flagSearch, "query", "q", "", "Filter by title, borrower name or library card id")
}

var tierColors = map[lifecycle.Tier]*color.Color{
	lifecycle.TierSuccess: color.New(color.FgGreen),
	lifecycle.TierInfo:    color.New(color.FgCyan),
	lifecycle.TierWarning: color.New(color.FgYellow),
	lifecycle.TierDanger:  color.New(color.FgRed, color.Bold),
}

func writeIssued(w io.Writer, views []ports.TransactionView) {
	if len(views) == 0 {
		fmt.Fprintln(w, color.HiBlackString("no matching loans"))
		return
	}

	var owed domain.Cents
	for _, v := range views {
		c := v.Classification
		status := tierColors[c.Tier].Sprint(padRight(c.Label.Title(), 9))
		fmt.Fprintf(w, "%s  %-28s %-18s due %s%s\n",
			status,
			truncate(v.BookTitle, 28),
			truncate(v.UserName, 18),
			v.DueDate.Format("2006-01-02"),
			dueNote(v),
		)
		if !v.FinePaid {
			owed += v.FineAmount
		}
	}
	fmt.Fprintf(w, "\n%d loan(s), %s in unpaid fines\n", len(views), owed)
}

func dueNote(v ports.TransactionView) string {
	c := v.Classification
	switch {
	case !c.Countdown:
		return ""
	case c.DaysUntilDue < 0:
		return fmt.Sprintf(" (%d day(s) late)", -c.DaysUntilDue)
	case c.DaysUntilDue == 0:
		return " (today)"
	default:
		return fmt.Sprintf(" (in %d day(s))", c.DaysUntilDue)
	}
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
