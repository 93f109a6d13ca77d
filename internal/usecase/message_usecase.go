package usecase

import (
	"context"
	"fmt"

	"github.com/alibestprice/price-bot/internal/linkparse"
	"github.com/alibestprice/price-bot/internal/models"
	"github.com/alibestprice/price-bot/internal/repo/aliexpress"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
)

type messageUsecase struct {
	api       aliexpress.Client
	telemetry TelemetryUsecase
}

func NewMessageUsecase(api aliexpress.Client, telemetry TelemetryUsecase) MessageUsecase {
	return &messageUsecase{
		api:       api,
		telemetry: telemetry,
	}
}

// ProcessMessage runs one inbound message through the pipeline:
// extract -> validate -> fetch -> convert -> compose -> reply. Each exit
// is terminal and leaves the user with a reply; errors returned here are
// chat-transport failures only.
func (uc *messageUsecase) ProcessMessage(ctx context.Context, msg models.IncomingMessage, conv Conversation) error {
	uc.telemetry.RecordEvent(msg.UserID, models.ActionMessageReceived)

	links := linkparse.ExtractLinks(msg.Text)
	if len(links) == 0 {
		if _, err := conv.Send(ctx, msgNoLink, models.SendOptions{}); err != nil {
			return fmt.Errorf("send no-link reply: %w", err)
		}
		return nil
	}

	var selected string
	for _, link := range links {
		if linkparse.IsValidLink(link) {
			selected = link
			break
		}
	}
	if selected == "" {
		if _, err := conv.Send(ctx, msgInvalidLink, models.SendOptions{}); err != nil {
			return fmt.Errorf("send invalid-link reply: %w", err)
		}
		return nil
	}

	return uc.processLink(ctx, msg, conv, selected)
}

func (uc *messageUsecase) processLink(ctx context.Context, msg models.IncomingMessage, conv Conversation, link string) error {
	handle, err := conv.Send(ctx, msgProcessing, models.SendOptions{})
	if err != nil {
		return fmt.Errorf("send processing reply: %w", err)
	}

	details, err := uc.api.GetProductDetails(ctx, link)
	if err != nil {
		log.Warnf(ctx, "product lookup failed for %s: %v", link, err)
		if err := conv.Edit(ctx, handle, msgNotFound, models.SendOptions{}); err != nil {
			return uc.fail(ctx, msg, conv, handle, fmt.Errorf("edit not-found reply: %w", err))
		}
		uc.telemetry.RecordEvent(msg.UserID, models.ActionProductNotFound)
		return nil
	}

	affiliateLink := uc.api.GenerateAffiliateLink(ctx, link)

	reply := ComposeReply(details, affiliateLink)
	opts := models.SendOptions{
		ParseHTML: true,
		Button: &models.LinkButton{
			Text: openButtonText,
			URL:  affiliateLink,
		},
	}
	if err := conv.Edit(ctx, handle, reply, opts); err != nil {
		return uc.fail(ctx, msg, conv, handle, fmt.Errorf("edit product reply: %w", err))
	}

	uc.telemetry.RecordEvent(msg.UserID, models.ActionLinkProcessed)
	log.Infow(ctx, "link processed", "link", link, "user_id", msg.UserID)
	return nil
}

// fail is the terminal path for unexpected failures after the transient
// reply went out: best-effort edit to a generic failure message.
func (uc *messageUsecase) fail(ctx context.Context, msg models.IncomingMessage, conv Conversation, handle models.MessageHandle, err error) error {
	log.Errorw(ctx, "error processing link", "error", err, "user_id", msg.UserID)
	uc.telemetry.RecordEvent(msg.UserID, models.ActionErrorProcessing)
	if editErr := conv.Edit(ctx, handle, msgProcessingError, models.SendOptions{}); editErr != nil {
		log.Errorw(ctx, "could not deliver failure reply", "error", editErr)
	}
	return err
}
