package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/mq"
)

func newEventsCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "借阅事件",
	}

	var (
		queue string
		keys  []string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "订阅借阅事件并逐行打印，Ctrl+C退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Events.URL == "" || cfg.Events.Exchange == "" {
				return fmt.Errorf("未配置events.url或events.exchange")
			}

			consumer, err := mq.NewConsumer(cfg.Events.URL, cfg.Events.Exchange, "topic", queue, keys)
			if err != nil {
				return err
			}
			defer func() { _ = consumer.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return consumer.Consume(ctx, func(routingKey string, body []byte) error {
				return printEvent(out, routingKey, body)
			})
		},
	}
	tail.Flags().StringVar(&queue, "queue", "", "持久化队列名，默认使用临时队列")
	tail.Flags().StringSliceVar(&keys, "key", []string{"loan.#"}, "绑定的routing key，可重复")

	events.AddCommand(tail)
	return events
}

// printEvent 一行一条：时间 类型 借阅ID 图书ID 邮箱 [罚金]
// 无法解析的消息原样输出，不阻塞队列
func printEvent(w io.Writer, routingKey string, body []byte) error {
	var e loan.Event
	if err := json.Unmarshal(body, &e); err != nil || e.LoanID == 0 {
		_, werr := fmt.Fprintf(w, "%s %s\n", routingKey, body)
		return werr
	}

	line := fmt.Sprintf("%s %s loan=%d book=%d borrower=%s",
		e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z"), e.Type, e.LoanID, e.BookID, e.BorrowerEmail)
	if e.Type == loan.EventReturned {
		line += fmt.Sprintf(" days_late=%d penalty=%.2f", e.DaysLate, e.Penalty)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
