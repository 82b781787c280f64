package telegram

// Delivers a rendered chart to a Telegram chat as a photo.
// Sends go through a rate limiter, a circuit breaker and retry with jitter.

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"blog-charts/internal/infra/config"
	log "blog-charts/internal/infra/log"
	"blog-charts/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	ChatID        int64
	RatePerSecond float64
	Retry         retry.Options
	// Breaker trips after this many consecutive failed sends.
	MaxConsecutiveFailures uint32
	BreakerTimeout         time.Duration
}

// OptionsFromConfig maps the telegram config section.
func OptionsFromConfig(cfg config.TelegramConfig) Options {
	return Options{
		ChatID:        cfg.ChatID,
		RatePerSecond: cfg.RatePerSecond,
		Retry: retry.Options{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   30 * time.Second,
		},
		MaxConsecutiveFailures: 5,
		BreakerTimeout:         60 * time.Second,
	}
}

type Publisher struct {
	sender         Sender
	chatID         int64
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	retry          retry.Options
}

func NewPublisher(sender Sender, opts Options) *Publisher {
	limit := rate.Limit(opts.RatePerSecond)
	if opts.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	maxFailures := opts.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TelegramAPI",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 4xx other than 429 is our fault, not the API's
		IsSuccessful: func(err error) bool {
			return err == nil || !retry.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.LogWarn("Circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Publisher{
		sender:         sender,
		chatID:         opts.ChatID,
		rateLimiter:    rate.NewLimiter(limit, 1),
		circuitBreaker: circuitBreaker,
		retry:          opts.Retry,
	}
}

// Caption builds the HTML photo caption from the chart's title and subtitle.
func Caption(title, subtitle string) string {
	title = html.EscapeString(title)
	subtitle = html.EscapeString(subtitle)
	switch {
	case title == "":
		return subtitle
	case subtitle == "":
		return "<b>" + title + "</b>"
	default:
		return "<b>" + title + "</b>\n" + subtitle
	}
}

// PublishPhoto sends the PNG at path with caption. It returns the sent message id.
func (p *Publisher) PublishPhoto(ctx context.Context, path, caption string) (int, error) {
	start := time.Now()
	attempts := 0

	var sent tgbotapi.Message
	err := retry.Do(ctx, p.retry, func() error {
		attempts++
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}

		_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(path))
			photo.Caption = caption
			photo.ParseMode = tgbotapi.ModeHTML

			msg, err := p.sender.Send(photo)
			if err != nil {
				return nil, err
			}
			sent = msg
			return msg, nil
		})
		if err != nil {
			log.LogWarn("Telegram send failed",
				zap.Int("attempt", attempts), zap.Bool("retryable", retry.IsRetryable(err)), zap.Error(err))
		}
		return err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.LogError("Circuit breaker rejected send", zap.String("path", path), zap.Error(err))
		}
		return 0, fmt.Errorf("failed to send chart to chat %d: %w", p.chatID, err)
	}

	log.LogInfo("Chart sent to Telegram",
		zap.Int64("chatID", p.chatID),
		zap.Int("messageID", sent.MessageID),
		zap.Int("attempts", attempts),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return sent.MessageID, nil
}

// State exposes the breaker state for diagnostics.
func (p *Publisher) State() gobreaker.State {
	return p.circuitBreaker.State()
}
