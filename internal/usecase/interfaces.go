package usecase

import (
	"context"

	"github.com/alibestprice/price-bot/internal/models"
)

// Conversation is the chat-transport capability the orchestrator needs:
// send a reply, then edit it as processing progresses.
type Conversation interface {
	Send(ctx context.Context, text string, opts models.SendOptions) (models.MessageHandle, error)
	Edit(ctx context.Context, handle models.MessageHandle, text string, opts models.SendOptions) error
}

type MessageUsecase interface {
	ProcessMessage(ctx context.Context, msg models.IncomingMessage, conv Conversation) error
}

type TelemetryUsecase interface {
	RecordEvent(userID int64, action models.ActionType)
	Statistics() models.Statistics
	Flush() error
}
