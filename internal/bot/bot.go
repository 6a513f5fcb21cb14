package bot

import (
	"strconv"
	"sync"

	"github.com/go-telegram/bot"

	"ridematcher/internal/matching"
	"ridematcher/internal/models"
	"ridematcher/internal/profile"
	"ridematcher/pkg/logger"
)

// Handler is the Telegram command front end of the matcher. It owns only
// conversational UI state (which chats are being asked for an arrival
// time); all matching state lives in the candidate store.
type Handler struct {
	service  *matching.Service
	profiles profile.Store
	logger   *logger.Logger

	mu      sync.Mutex
	pending map[int64]models.Direction // chats awaiting an arrival time
}

// NewHandler creates the command handler set.
func NewHandler(service *matching.Service, profiles profile.Store, log *logger.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		logger:   log,
		pending:  make(map[int64]models.Direction),
	}
}

// Register attaches the command handlers to the bot. Plain-text messages
// (arrival time replies) go through DefaultHandler, wired via
// bot.WithDefaultHandler at construction.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommand, h.startHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "help", bot.MatchTypeCommand, h.helpHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "goto", bot.MatchTypeCommand, h.gotoHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "goback", bot.MatchTypeCommand, h.gobackHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "cancelride", bot.MatchTypeCommand, h.cancelrideHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "setstations", bot.MatchTypeCommand, h.setstationsHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "profile", bot.MatchTypeCommand, h.profileHandler)
	b.RegisterHandler(bot.HandlerTypeMessageText, "stats", bot.MatchTypeCommand, h.statsHandler)
}

func (h *Handler) setPending(chatID int64, direction models.Direction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending[chatID] = direction
}

func (h *Handler) takePending(chatID int64) (models.Direction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	direction, ok := h.pending[chatID]
	if ok {
		delete(h.pending, chatID)
	}
	return direction, ok
}

func (h *Handler) clearPending(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, chatID)
}

func userIDFromChat(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
