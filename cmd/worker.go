/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/alumnet/apiserver/config"
	"github.com/alumnet/apiserver/internal/logging"
	"github.com/alumnet/apiserver/internal/mailer"
	"github.com/alumnet/apiserver/internal/mq"
	"github.com/alumnet/apiserver/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Delivers queued email campaigns",
	Long: `Consumes the email-campaigns queue and mails every recipient through
the configured SMTP server. Without SMTP credentials the mails are logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("open message queue: %w", err)
		}
		if queue == nil {
			return errors.New("worker requires a message queue backend (MQ_BACKEND)")
		}
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Warn("close message queue", zap.Error(err))
			}
		}()

		delivery := services.NewCampaignDelivery(mailer.NewSMTPSender(cfg.SMTP, logger), logger)
		logger.Info("worker consuming", zap.String("channel", services.CampaignChannel), zap.String("backend", cfg.MQ.Backend))

		err = queue.Subscribe(ctx, services.CampaignChannel, delivery.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consume %s: %w", services.CampaignChannel, err)
		}
		logger.Info("worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
