package telegram

import (
	"context"

	"github.com/alibestprice/price-bot/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// conversation adapts one Telegram chat to the orchestrator's
// send-then-edit contract.
type conversation struct {
	b      *bot.Bot
	chatID int64
}

func (c *conversation) Send(ctx context.Context, text string, opts models.SendOptions) (models.MessageHandle, error) {
	params := &bot.SendMessageParams{
		ChatID: c.chatID,
		Text:   text,
	}
	applySendOptions(params, opts)

	msg, err := c.b.SendMessage(ctx, params)
	if err != nil {
		return models.MessageHandle{}, err
	}
	return models.MessageHandle{ChatID: c.chatID, MessageID: msg.ID}, nil
}

func (c *conversation) Edit(ctx context.Context, handle models.MessageHandle, text string, opts models.SendOptions) error {
	params := &bot.EditMessageTextParams{
		ChatID:    handle.ChatID,
		MessageID: handle.MessageID,
		Text:      text,
	}
	if opts.ParseHTML {
		params.ParseMode = tgmodels.ParseModeHTML
	}
	if opts.DisableLinkPreview {
		params.LinkPreviewOptions = &tgmodels.LinkPreviewOptions{IsDisabled: bot.True()}
	}
	if opts.Button != nil {
		params.ReplyMarkup = linkKeyboard(*opts.Button)
	}

	_, err := c.b.EditMessageText(ctx, params)
	return err
}

func applySendOptions(params *bot.SendMessageParams, opts models.SendOptions) {
	if opts.ParseHTML {
		params.ParseMode = tgmodels.ParseModeHTML
	}
	if opts.DisableLinkPreview {
		params.LinkPreviewOptions = &tgmodels.LinkPreviewOptions{IsDisabled: bot.True()}
	}
	if opts.Button != nil {
		params.ReplyMarkup = linkKeyboard(*opts.Button)
	}
}

func linkKeyboard(button models.LinkButton) *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{{
			{Text: button.Text, URL: button.URL},
		}},
	}
}
