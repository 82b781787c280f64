package commands

// Command to render the chart and post it to a Telegram chat

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-charts/internal/features/charts"
	"blog-charts/internal/features/telegram"
	"blog-charts/internal/infra/config"
	logging "blog-charts/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPublishCmd() *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Render the chart and send it to Telegram",
		Long:  `Render the chart, then send the PNG as a photo to telegram.chat_id with the chart title and subtitle as caption.`,
		RunE:  runPublish,
	}
	config.RegisterTelegramFlags(publishCmd.Flags())
	return publishCmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndInit(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if err := cfg.ValidateTelegram(); err != nil {
		logging.LogError("Telegram is not configured", zap.Error(err))
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := renderChart(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Chart saved successfully")

	client := &http.Client{Timeout: time.Duration(cfg.Telegram.RequestTimeout) * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		logging.LogError("Failed to create Telegram bot", zap.Error(err))
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	style := charts.DefaultStyle()
	publisher := telegram.NewPublisher(bot, telegram.OptionsFromConfig(cfg.Telegram))
	messageID, err := publisher.PublishPhoto(ctx, res.Path, telegram.Caption(style.Title.Text, style.Subtitle.Text))
	if err != nil {
		logging.LogError("Failed to publish chart", zap.Error(err))
		return err
	}

	logging.LogSuccess("Chart published",
		zap.Int64("chatID", cfg.Telegram.ChatID),
		zap.Int("messageID", messageID))
	return nil
}
