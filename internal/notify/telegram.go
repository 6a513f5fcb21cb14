package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"

	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// TelegramDispatcher delivers match notifications as direct Telegram
// messages. Recipient ids are Telegram chat ids.
type TelegramDispatcher struct {
	bot    *bot.Bot
	logger *logger.Logger
}

// NewTelegramDispatcher creates a dispatcher over an already-connected bot.
func NewTelegramDispatcher(b *bot.Bot, log *logger.Logger) *TelegramDispatcher {
	return &TelegramDispatcher{bot: b, logger: log}
}

// Dispatch sends the notification message to the recipient's chat.
func (d *TelegramDispatcher) Dispatch(ctx context.Context, notification models.MatchNotification) error {
	chatID, err := strconv.ParseInt(notification.RecipientID, 10, 64)
	if err != nil {
		return fmt.Errorf("recipient id %q is not a chat id: %w", notification.RecipientID, err)
	}

	text := fmt.Sprintf(
		"🚆 %s тоже едет на поезде %s!\nМаршрут: %s → %s",
		notification.JoinedName,
		notification.DepartureTime.Format("15:04"),
		notification.JoinedFrom,
		notification.JoinedTo,
	)

	_, err = d.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
