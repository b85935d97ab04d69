// libctl 运维命令行：表结构迁移、借阅状态批量刷新、借阅事件订阅
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "libctl",
		Short:         "图书馆服务运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", "./config", "配置文件目录")

	// 日志统一输出到stderr，stdout只留给命令结果
	loadConfig := func() (*config.Config, error) {
		cfg, err := config.LoadFrom(configDir, ".")
		if err != nil {
			return nil, err
		}
		zl, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
		if err != nil {
			return nil, err
		}
		logger.ReplaceGlobal(zl)
		return cfg, nil
	}
	openDB := func() (*gorm.DB, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		return rdb.NewDB(cfg)
	}

	root.AddCommand(newMigrateCmd(openDB), newLoansCmd(openDB), newEventsCmd(loadConfig))
	return root
}

func newMigrateCmd(openDB func() (*gorm.DB, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close(db) }()

			if err := rdb.AutoMigrate(db); err != nil {
				return fmt.Errorf("迁移失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrate: ok")
			return nil
		},
	}
}
