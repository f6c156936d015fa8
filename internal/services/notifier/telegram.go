// Package notifier delivers urgent cycle outcomes via the Telegram Bot
// API. Only actionable or dangerous recommendations are pushed; routine
// stable cycles stay on the dashboard.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
	"github.com/busandev/firecro/pkg/retrier"
)

var hundred = decimal.NewFromInt(100)

// Telegram pushes cycle alerts to a single chat.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// NewTelegram creates the notifier. The chat ID may be empty when the
// operator has not discovered it yet; sends then fail with a hint to
// run the /id command.
func NewTelegram(botToken, chatID string, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}

	var chatIDInt int64
	if chatID != "" {
		chatIDInt, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid telegram chat id")
		}
	}

	return &Telegram{
		bot:    bot,
		chatID: chatIDInt,
		retrier: retrier.New(4, 2*time.Second),
		logger: logger,
	}, nil
}

// ShouldAlert reports whether the cycle warrants an immediate push.
func ShouldAlert(out domain.CycleOutput) bool {
	switch out.Assessment.Kind {
	case domain.ActionPanicSell, domain.ActionCrisisBuy, domain.ActionLossProtection:
		return true
	}
	switch out.Assessment.Severity {
	case domain.SeverityWarning, domain.SeverityDanger:
		return true
	}
	return out.Contribution.Kind == domain.ActionCrisisBuy
}

// Notify formats and sends the cycle alert.
func (t *Telegram) Notify(ctx context.Context, out domain.CycleOutput) error {
	if t.chatID == 0 {
		return errors.New("telegram chat id is not set, message the bot with /id to discover it")
	}

	text := formatCycle(out)

	err := t.retrier.Do(ctx, func(ctx context.Context) error {
		msg := tgbotapi.NewMessage(t.chatID, text)
		msg.ParseMode = "MarkdownV2"
		_, err := t.bot.Send(msg)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "send telegram alert")
	}

	t.logger.Info("alert sent", zap.String("kind", out.Assessment.Kind.String()))
	return nil
}

// ListenForCommands polls Telegram updates until ctx is cancelled and
// answers the /id command with the chat ID, so operators can discover
// the value for their config without extra tooling.
func (t *Telegram) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					t.handleCommand(update.Message)
				}
			}
		}
	}()
}

func (t *Telegram) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "id":
		reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Chat ID: %d", msg.Chat.ID))
		if _, err := t.bot.Send(reply); err != nil {
			t.logger.Warn("reply to /id failed", zap.Error(err))
		}
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		if _, err := t.bot.Send(reply); err != nil {
			t.logger.Warn("reply to /ping failed", zap.Error(err))
		}
	}
}

func formatCycle(out domain.CycleOutput) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s *%s*\n\n", severityEmoji(out.Assessment.Severity),
		escapeMarkdownV2(strings.ToUpper(out.Assessment.Kind.String()))))
	b.WriteString(escapeMarkdownV2(out.Assessment.Rationale))
	b.WriteString("\n")

	if out.Assessment.HasAmount {
		b.WriteString(fmt.Sprintf("\n💰 Amount: %s\n", escapeMarkdownV2(domain.FormatKRW(out.Assessment.Amount))))
	}
	if len(out.Assessment.SellOrder) > 0 {
		b.WriteString(fmt.Sprintf("🔻 Sell order: %s\n", escapeMarkdownV2(strings.Join(out.Assessment.SellOrder, " > "))))
	}

	b.WriteString(fmt.Sprintf("\n📊 %s \\| stock %s%% / cash %s%%\n",
		escapeMarkdownV2(out.PhaseName),
		escapeMarkdownV2(out.Portfolio.StockRatio.Mul(hundred).StringFixed(1)),
		escapeMarkdownV2(out.Portfolio.CashRatio.Mul(hundred).StringFixed(1))))

	if out.Contribution.Kind == domain.ActionCrisisBuy {
		b.WriteString(fmt.Sprintf("\n🛒 Contribution: %s\n", escapeMarkdownV2(out.Contribution.Rationale)))
	}

	b.WriteString(fmt.Sprintf("\n🕒 %s", escapeMarkdownV2(out.EvaluatedAt.Format("2006-01-02 15:04:05 MST"))))
	return b.String()
}

func severityEmoji(s domain.Severity) string {
	switch s {
	case domain.SeverityDanger:
		return "🚨"
	case domain.SeverityWarning:
		return "⚠️"
	case domain.SeveritySuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
