package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/junaidrashid-git/restaurant-api/notify"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume notification events from RabbitMQ and send e-mails",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Broker.URL == "" {
			return errors.New("AMQP_URL must be set")
		}

		var mailer notify.Mailer = notify.LogMailer{}
		if cfg.SMTP.Enabled() {
			mailer = notify.NewSMTPMailer(cfg.SMTP)
		} else {
			log.Warn("SMTP is not configured, e-mails are only logged")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithFields(log.Fields{"exchange": cfg.Broker.Exchange, "queue": cfg.Broker.Queue}).
			Info("notifier consuming, use CTRL+C to exit")
		return notify.NewConsumer(cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.Queue, mailer).Run(ctx)
	},
}
