package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

func newLoansCmd(openDB func() (*gorm.DB, error)) *cobra.Command {
	loans := &cobra.Command{
		Use:   "loans",
		Short: "借阅记录维护",
	}

	var at string
	refresh := &cobra.Command{
		Use:   "refresh-status",
		Short: "按当前时间重算所有未归还借阅的状态（ACTIVE/LATE）并落库",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at 需要RFC3339格式: %w", err)
				}
				now = t.UTC()
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close(db) }()

			changed, err := rdb.NewLoanRepository(db).RefreshOpenStatuses(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d loan(s)\n", changed)
			return nil
		},
	}
	refresh.Flags().StringVar(&at, "at", "", "以指定时间计算（RFC3339），默认当前时间")

	loans.AddCommand(refresh)
	return loans
}
