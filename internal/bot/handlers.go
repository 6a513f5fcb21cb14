package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"ridematcher/internal/matching"
	"ridematcher/internal/models"
)

func (h *Handler) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to send bot reply")
	}
}

// refreshIdentity keeps the stored display fields in sync with Telegram.
func (h *Handler) refreshIdentity(ctx context.Context, from *tgmodels.User, chatID int64) {
	if from == nil {
		return
	}
	err := h.profiles.SetIdentity(ctx, userIDFromChat(chatID), from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to refresh user identity")
	}
}

func (h *Handler) startHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	h.refreshIdentity(ctx, update.Message.From, update.Message.Chat.ID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, msgWelcome)
}

func (h *Handler) helpHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, msgHelp)
}

func (h *Handler) gotoHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	h.beginSearch(ctx, b, update, models.DirectionForward)
}

func (h *Handler) gobackHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	h.beginSearch(ctx, b, update, models.DirectionReverse)
}

// beginSearch checks the route configuration and asks for an arrival time;
// the reply is handled by DefaultHandler.
func (h *Handler) beginSearch(ctx context.Context, b *bot.Bot, update *tgmodels.Update, direction models.Direction) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	h.refreshIdentity(ctx, update.Message.From, chatID)

	prof, err := h.profiles.Get(ctx, userIDFromChat(chatID))
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to load profile")
		h.sendMessage(ctx, b, chatID, msgSearchFailed)
		return
	}
	if !prof.HasStations() {
		h.sendMessage(ctx, b, chatID, msgNoStations)
		return
	}

	h.setPending(chatID, direction)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(msgAskArrival, arrivalStation(prof, direction)))
}

// DefaultHandler receives every non-command message. The only conversation
// this bot holds is the arrival-time question, so anything else gets the
// short usage hint.
func (h *Handler) DefaultHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	direction, ok := h.takePending(chatID)
	if !ok {
		h.sendMessage(ctx, b, chatID, msgInfo)
		return
	}

	result, err := h.service.Search(ctx, userIDFromChat(chatID), update.Message.Text, direction)
	if err != nil {
		switch {
		case matching.IsParseError(err):
			// Keep the conversation open so the user can try again.
			h.setPending(chatID, direction)
			h.sendMessage(ctx, b, chatID, msgInvalidTime)
		case errors.Is(err, matching.ErrNoStations):
			h.sendMessage(ctx, b, chatID, msgNoStations)
		case errors.Is(err, matching.ErrLookup):
			h.sendMessage(ctx, b, chatID, msgLookupFailed)
		default:
			h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "search_error"}).Error("Ride search failed")
			h.sendMessage(ctx, b, chatID, msgSearchFailed)
		}
		return
	}

	h.sendMessage(ctx, b, chatID, formatSearchResult(result))
}

func (h *Handler) cancelrideHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	h.clearPending(chatID)

	existed, err := h.service.Cancel(ctx, userIDFromChat(chatID))
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to cancel ride search")
		h.sendMessage(ctx, b, chatID, msgSearchFailed)
		return
	}
	if existed {
		h.sendMessage(ctx, b, chatID, msgCancelSuccess)
	} else {
		h.sendMessage(ctx, b, chatID, msgCancelNothing)
	}
}

// setstationsHandler parses "/setstations <код> <название>; <код> <название>".
func (h *Handler) setstationsHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	h.refreshIdentity(ctx, update.Message.From, chatID)

	args := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/setstations"))
	parts := strings.Split(args, ";")
	if len(parts) != 2 {
		h.sendMessage(ctx, b, chatID, msgStationsFormat)
		return
	}

	baseID, baseLabel, ok := parseStation(parts[0])
	if !ok {
		h.sendMessage(ctx, b, chatID, msgStationsFormat)
		return
	}
	destID, destLabel, ok := parseStation(parts[1])
	if !ok {
		h.sendMessage(ctx, b, chatID, msgStationsFormat)
		return
	}

	err := h.profiles.SetStations(ctx, userIDFromChat(chatID), baseID, baseLabel, destID, destLabel)
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to store stations")
		h.sendMessage(ctx, b, chatID, msgSearchFailed)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(msgStationsSaved, baseLabel, destLabel))
}

// parseStation splits "code label words" into code and label; the label
// falls back to the code when omitted.
func parseStation(part string) (id, label string, ok bool) {
	fields := strings.Fields(strings.TrimSpace(part))
	if len(fields) == 0 {
		return "", "", false
	}
	id = fields[0]
	label = strings.Join(fields[1:], " ")
	if label == "" {
		label = id
	}
	return id, label, true
}

func (h *Handler) profileHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	prof, err := h.profiles.Get(ctx, userIDFromChat(chatID))
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to load profile")
		h.sendMessage(ctx, b, chatID, msgSearchFailed)
		return
	}
	if !prof.HasStations() {
		h.sendMessage(ctx, b, chatID, msgNoProfile)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("Ваш маршрут: %s → %s", prof.BaseStopLabel, prof.DestinationLabel))
}

// statsHandler is admin-only: the number of users currently in the pool.
func (h *Handler) statsHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	prof, err := h.profiles.Get(ctx, userIDFromChat(chatID))
	if err != nil || prof == nil || !prof.IsAdmin {
		h.sendMessage(ctx, b, chatID, msgNotAdmin)
		return
	}

	count, err := h.service.ActiveSearches(ctx)
	if err != nil {
		h.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "store_error"}).Error("Failed to read stats")
		h.sendMessage(ctx, b, chatID, msgSearchFailed)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("Активных поисков: %d", count))
}
