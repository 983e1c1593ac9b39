package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/glitch-app/glitch/internal/config"
	mq "github.com/glitch-app/glitch/internal/infra/queue"
	"github.com/glitch-app/glitch/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEventsCmd() *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Inspect the quest event stream",
	}

	var bindings []string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print quest events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := container()
			cfg, err := invoke[*config.Config](inj)
			if err != nil {
				return err
			}
			if cfg.RabbitMQ.URL == "" {
				return errors.New("rabbitmq.url is not configured")
			}
			conn, err := invoke[*amqp.Connection](inj)
			if err != nil {
				return err
			}
			defer conn.Close()
			log, err := invoke[*zap.Logger](inj)
			if err != nil {
				return err
			}

			consumer, err := mq.NewConsumer(conn, "", bindings, 0, log, cfg)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintln(cmd.OutOrStdout(), RenderInfo("waiting for events, ctrl+c to stop"))
			err = consumer.Handle(ctx, func(_ context.Context, routingKey string, body []byte) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(routingKey, body))
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	tail.Flags().StringSliceVar(&bindings, "bind", []string{"#"}, "Routing key patterns to bind, e.g. quest.* or user.leveled_up")

	events.AddCommand(tail)
	return events
}

func formatEvent(routingKey string, body []byte) string {
	var ev service.Event
	if err := sonic.Unmarshal(body, &ev); err != nil {
		return RenderWarning(fmt.Sprintf("%s undecodable: %s", routingKey, string(body)))
	}
	line := MutedStyle.Render(ev.OccurredAt.Format("15:04:05")) + " " + KeyStyle.Render(routingKey)
	if ev.QuestID != nil {
		line += " quest=" + ev.QuestID.String()
	}
	if ev.UserID != nil {
		line += " user=" + ev.UserID.String()
	}
	if ev.Data != nil {
		if data, err := sonic.Marshal(ev.Data); err == nil {
			line += " " + string(data)
		}
	}
	return line
}

