package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/features/raffle/models"
)

const maxRetryAfter = 30 * time.Second

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts raffle events to the admin chat.
type Notifier struct {
	bot    Sender
	chatID int64
	logger zerolog.Logger
}

// NewNotifier authorizes the bot token against the Bot API.
func NewNotifier(token string, chatID int64, logger zerolog.Logger) (*Notifier, error) {
	return NewNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, logger)
}

// NewNotifierWithEndpoint is NewNotifier against a custom Bot API endpoint
// of the form "https://host/bot%s/%s".
func NewNotifierWithEndpoint(token, endpoint string, chatID int64, logger zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Int64("chat_id", chatID).Msg("telegram bot authorized")
	return NewNotifierWithSender(bot, chatID, logger), nil
}

func NewNotifierWithSender(bot Sender, chatID int64, logger zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, logger: logger}
}

// Notify sends the event text to the admin chat. When Telegram asks to slow
// down, the send is retried once after the requested delay.
func (n *Notifier) Notify(ctx context.Context, e models.Event) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatEvent(e))

	_, err := n.bot.Send(msg)
	var apiErr *tgbotapi.Error
	if stderrors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		if wait > maxRetryAfter {
			return fmt.Errorf("telegram rate limited for %s: %w", wait, err)
		}
		n.logger.Warn().Dur("retry_after", wait).Msg("telegram rate limited, retrying")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		_, err = n.bot.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}

// FormatEvent renders an event as an admin chat message.
func FormatEvent(e models.Event) string {
	var b strings.Builder
	switch e.Type {
	case models.EventNumbersSold:
		fmt.Fprintf(&b, "Sale in raffle %s\n", e.RaffleID)
	case models.EventNumbersReserved:
		fmt.Fprintf(&b, "Reservation in raffle %s\n", e.RaffleID)
	case models.EventFraudReported:
		fmt.Fprintf(&b, "Fraud report in raffle %s\n", e.RaffleID)
	default:
		fmt.Fprintf(&b, "%s in raffle %s\n", e.Type, e.RaffleID)
	}
	if e.SellerID != "" {
		fmt.Fprintf(&b, "Seller: %s\n", e.SellerID)
	}
	if e.BuyerName != "" {
		fmt.Fprintf(&b, "Buyer: %s\n", e.BuyerName)
	}
	if e.ParticipantID != "" {
		fmt.Fprintf(&b, "Participant: %s\n", e.ParticipantID)
	}
	if len(e.Numbers) > 0 {
		nums := make([]string, len(e.Numbers))
		for i, num := range e.Numbers {
			nums[i] = strconv.Itoa(num)
		}
		fmt.Fprintf(&b, "Numbers: %s\n", strings.Join(nums, ", "))
	}
	if e.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", e.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
