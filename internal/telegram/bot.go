// Package telegram runs the bot's long-polling loop and routes updates
// to the conversation orchestrator.
package telegram

import (
	"context"
	"fmt"
	"runtime"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/alibestprice/price-bot/internal/models"
	"github.com/alibestprice/price-bot/internal/usecase"
	"github.com/alibestprice/price-bot/pkg/util"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/fx"
)

const (
	msgWelcome = "👋 Welcome to Ali Best Price Bot!\n\n" +
		"I can help you find the best prices on AliExpress and generate affiliate links.\n\n" +
		"Just send me an AliExpress product link, and I'll do the rest! 🛍️"

	msgHelp = "🔍 <b>How to use Ali Best Price Bot:</b>\n\n" +
		"1. Send me any AliExpress product link\n" +
		"2. I'll check the price and generate an affiliate link\n" +
		"3. Use the affiliate link to support us!\n\n" +
		"<b>Commands:</b>\n" +
		"/start - Start the bot\n" +
		"/help - Show this help message\n\n" +
		"If you have any issues, please try again later."

	msgAdminsOnly = "⛔ This command is for administrators only."

	msgTransportError = "❌ An error occurred while communicating with Telegram.\n" +
		"Please try again later."
)

type handlers struct {
	conf      *config.Config
	messages  usecase.MessageUsecase
	telemetry usecase.TelemetryUsecase
}

// StartBot wires the Telegram long-polling loop into the fx lifecycle.
func StartBot(
	lc fx.Lifecycle,
	conf *config.Config,
	messages usecase.MessageUsecase,
	telemetry usecase.TelemetryUsecase,
) error {
	h := &handlers{
		conf:      conf,
		messages:  messages,
		telemetry: telemetry,
	}

	b, err := bot.New(conf.Bot.Token, bot.WithDefaultHandler(h.onMessage))
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.onStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.onHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.onStats)

	pollCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(pollCtx, "starting telegram polling", "bot_name", conf.Bot.Name)
				b.Start(pollCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})

	return nil
}

func (h *handlers) onStart(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	h.telemetry.RecordEvent(msg.From.ID, models.ActionStartCommand)
	h.reply(ctx, b, msg.Chat.ID, msgWelcome, "")
}

func (h *handlers) onHelp(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	h.telemetry.RecordEvent(msg.From.ID, models.ActionHelpCommand)
	h.reply(ctx, b, msg.Chat.ID, msgHelp, tgmodels.ParseModeHTML)
}

func (h *handlers) onStats(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	admins := h.conf.Bot.AdminUserIDs
	if len(admins) > 0 && !util.SliceIncludes(admins, msg.From.ID) {
		h.reply(ctx, b, msg.Chat.ID, msgAdminsOnly, "")
		return
	}

	h.telemetry.RecordEvent(msg.From.ID, models.ActionStatsCommand)

	stats := h.telemetry.Statistics()
	text := fmt.Sprintf(
		"📊 <b>Bot Statistics:</b>\n\n"+
			"Total Users: %d\n"+
			"Total Requests: %d\n"+
			"Successful Conversions: %d\n"+
			"Failed Conversions: %d\n"+
			"Active Today: %d\n"+
			"Active This Week: %d",
		stats.TotalUsers,
		stats.TotalRequests,
		stats.SuccessfulConversions,
		stats.FailedConversions,
		stats.ActiveToday,
		stats.ActiveThisWeek,
	)
	h.reply(ctx, b, msg.Chat.ID, text, tgmodels.ParseModeHTML)
}

// onMessage handles every non-command text message.
func (h *handlers) onMessage(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			length := runtime.Stack(stack, false)
			log.Errorw(ctx, "PANIC RECOVER", "panic", r, "stack", string(stack[:length]))
		}
	}()

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	incoming := models.IncomingMessage{
		ChatID: msg.Chat.ID,
		UserID: msg.From.ID,
		Text:   msg.Text,
	}
	conv := &conversation{b: b, chatID: incoming.ChatID}

	if err := h.messages.ProcessMessage(ctx, incoming, conv); err != nil {
		// Chat transport failed mid-conversation; one best-effort
		// apology, no retry.
		log.Errorw(ctx, "process message failed",
			"error", err,
			"chat_id", incoming.ChatID,
			"user_id", incoming.UserID)
		h.reply(ctx, b, incoming.ChatID, msgTransportError, "")
	}
}

func (h *handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, parseMode tgmodels.ParseMode) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		log.Errorw(ctx, "send reply failed", "error", err, "chat_id", chatID)
	}
}
