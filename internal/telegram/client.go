// Package telegram sends pricing run summaries via the Telegram Bot API.
// A summary lists the run's statistics and its largest early-exercise
// premiums, formatted as MarkdownV2, and is delivered with linear-backoff retries.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/optionpricer/internal/compare"
	"github.com/rewired-gh/optionpricer/internal/logger"
	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/shopspring/decimal"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers the summary of a run
func (c *Client) Send(ctx context.Context, run models.Run, summary compare.Summary, top []models.Comparison) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(run, summary, top))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)
		if i == c.maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("telegram send cancelled: %w", ctx.Err())
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage formats a run summary into a Telegram message
func formatMessage(run models.Run, summary compare.Summary, top []models.Comparison) string {
	var b strings.Builder

	b.WriteString("📊 *Option Pricing Run*\n\n")
	fmt.Fprintf(&b, "📅 Started: %s\n", escapeMarkdownV2(run.StartedAt.Format("2006-01-02 15:04:05")))
	fmt.Fprintf(&b, "⚙️ Steps: %d \\(%s\\)\n", run.Steps, escapeMarkdownV2(run.Exercise))
	fmt.Fprintf(&b, "⏱ Duration: %s\n\n", escapeMarkdownV2(formatDuration(run.Duration)))

	fmt.Fprintf(&b, "Scenarios: *%d*, early exercise: *%d*\n", summary.Scenarios, summary.EarlyExercise)
	fmt.Fprintf(&b, "Mean premium: %s\n", escapeMarkdownV2(formatPrice(summary.MeanPremium)))
	fmt.Fprintf(&b, "Max premium: %s\n", escapeMarkdownV2(formatPrice(summary.MaxPremium)))

	if len(top) == 0 {
		return b.String()
	}

	b.WriteString("\n🏆 *Top Early Exercise Premiums*\n\n")
	for i, c := range top {
		fmt.Fprintf(&b, "%d\\. %s \\(%s\\)\n", i+1, escapeMarkdownV2(c.Name), escapeMarkdownV2(c.Kind.Label()))
		fmt.Fprintf(&b, "   Premium: *%s* \\(%s → %s\\)\n",
			escapeMarkdownV2(formatPrice(c.Premium)),
			escapeMarkdownV2(formatPrice(c.European)),
			escapeMarkdownV2(formatPrice(c.American)))
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

func formatPrice(p float64) string {
	return decimal.NewFromFloat(p).Round(4).String()
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
