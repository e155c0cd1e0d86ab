package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"interview-prep-bot/internal/storage"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Показать таблицу лидеров",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			return printLeaderboard(cmd.Context(), cmd.OutOrStdout(), store, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "сколько записей показать (0 = все)")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [имя]",
		Short: "Показать итоги прошлых интервью пользователя",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.prefs.GetUserName()
			if len(args) == 1 {
				name = args[0]
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			return printHistory(cmd.Context(), cmd.OutOrStdout(), store, name)
		},
	}
}

func printLeaderboard(ctx context.Context, out io.Writer, board storage.Leaderboard, limit int) error {
	entries, err := board.Ranked(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Таблица лидеров пока пуста.")
		return nil
	}

	fmt.Fprintln(out, "🏆 Таблица лидеров")
	for i, entry := range entries {
		if limit > 0 && i == limit {
			break
		}
		fmt.Fprintf(out, "%2d. %-24s %d/10\n", i+1, entry.Name, entry.Score)
	}
	return nil
}

func printHistory(ctx context.Context, out io.Writer, history storage.History, name string) error {
	count := 0
	for record, err := range history.ForUser(ctx, name) {
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
			return err
		}
		count++
		fmt.Fprintf(out, "📄 Интервью %d\n%s\n\n", count, record.Summary)
	}
	if count == 0 {
		fmt.Fprintf(out, "История пользователя %s пуста.\n", name)
	}
	return nil
}

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports [id]",
		Short: "Список сохраненных отчетов или отчет по ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dir := a.cfg.Storage.ReportsDir

			if len(args) == 0 {
				ids, err := storage.ListReports(dir)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintf(out, "В %s нет сохраненных отчетов.\n", dir)
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			report, err := storage.LoadReport(dir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🆔 %s\n👤 %s\n🕒 %s\n📋 %s, %s, %s\n",
				report.InterviewID, report.User, report.Timestamp,
				report.Config.Role, report.Config.Mode, report.Config.DomainOrDefault())
			if report.Score != nil {
				fmt.Fprintf(out, "🏆 %d/10\n", *report.Score)
			}
			fmt.Fprintf(out, "\n%s\n", report.Summary)
			return nil
		},
	}
	return cmd
}
