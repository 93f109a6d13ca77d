package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/alibestprice/price-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	details    *models.ProductDetails
	detailsErr error
	affiliate  string
}

func (f *fakeAPI) GetProductDetails(ctx context.Context, url string) (*models.ProductDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

func (f *fakeAPI) GenerateAffiliateLink(ctx context.Context, url string) string {
	if f.affiliate == "" {
		return url
	}
	return f.affiliate
}

type sentMessage struct {
	text string
	opts models.SendOptions
}

type fakeConversation struct {
	sendErr error
	editErr error

	sent  []sentMessage
	edits []sentMessage
}

func (f *fakeConversation) Send(ctx context.Context, text string, opts models.SendOptions) (models.MessageHandle, error) {
	if f.sendErr != nil {
		return models.MessageHandle{}, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{text: text, opts: opts})
	return models.MessageHandle{ChatID: 1, MessageID: len(f.sent)}, nil
}

func (f *fakeConversation) Edit(ctx context.Context, handle models.MessageHandle, text string, opts models.SendOptions) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, sentMessage{text: text, opts: opts})
	return nil
}

type fakeTelemetry struct {
	actions []models.ActionType
}

func (f *fakeTelemetry) RecordEvent(userID int64, action models.ActionType) {
	f.actions = append(f.actions, action)
}

func (f *fakeTelemetry) Statistics() models.Statistics { return models.Statistics{} }
func (f *fakeTelemetry) Flush() error                  { return nil }

func newTestMessage(text string) models.IncomingMessage {
	return models.IncomingMessage{ChatID: 10, UserID: 42, Text: text}
}

func TestProcessMessageNoLink(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{}
	tel := &fakeTelemetry{}
	uc := NewMessageUsecase(&fakeAPI{}, tel)

	err := uc.ProcessMessage(t.Context(), newTestMessage("hello there"), conv)
	require.NoError(t, err)

	require.Len(t, conv.sent, 1)
	assert.Equal(t, msgNoLink, conv.sent[0].text)
	assert.Equal(t, []models.ActionType{models.ActionMessageReceived}, tel.actions)
}

func TestProcessMessageSuccess(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		details:   &models.ProductDetails{Title: "Widget", Price: 9.99},
		affiliate: "https://s.click.aliexpress.com/e/_aff",
	}
	conv := &fakeConversation{}
	tel := &fakeTelemetry{}
	uc := NewMessageUsecase(api, tel)

	msg := newTestMessage("look: https://www.aliexpress.com/item/1234567890.html")
	require.NoError(t, uc.ProcessMessage(t.Context(), msg, conv))

	require.Len(t, conv.sent, 1)
	assert.Equal(t, msgProcessing, conv.sent[0].text)

	require.Len(t, conv.edits, 1)
	edit := conv.edits[0]
	assert.Contains(t, edit.text, "Widget")
	assert.Contains(t, edit.text, api.affiliate)
	assert.True(t, edit.opts.ParseHTML)
	require.NotNil(t, edit.opts.Button)
	assert.Equal(t, api.affiliate, edit.opts.Button.URL)

	assert.Equal(t, []models.ActionType{
		models.ActionMessageReceived,
		models.ActionLinkProcessed,
	}, tel.actions)
}

func TestProcessMessageProductNotFound(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{detailsErr: errors.New("no products")}
	conv := &fakeConversation{}
	tel := &fakeTelemetry{}
	uc := NewMessageUsecase(api, tel)

	msg := newTestMessage("https://www.aliexpress.com/item/1234567890.html")
	require.NoError(t, uc.ProcessMessage(t.Context(), msg, conv))

	require.Len(t, conv.edits, 1)
	assert.Equal(t, msgNotFound, conv.edits[0].text)
	assert.Equal(t, []models.ActionType{
		models.ActionMessageReceived,
		models.ActionProductNotFound,
	}, tel.actions)
}

func TestProcessMessageEditFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: &models.ProductDetails{Title: "X", Price: 1}}
	conv := &fakeConversation{editErr: errors.New("telegram down")}
	tel := &fakeTelemetry{}
	uc := NewMessageUsecase(api, tel)

	msg := newTestMessage("https://www.aliexpress.com/item/1234567890.html")
	err := uc.ProcessMessage(t.Context(), msg, conv)
	require.Error(t, err)

	assert.Equal(t, []models.ActionType{
		models.ActionMessageReceived,
		models.ActionErrorProcessing,
	}, tel.actions)
}

func TestProcessMessageSendFailure(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{sendErr: errors.New("telegram down")}
	uc := NewMessageUsecase(&fakeAPI{}, &fakeTelemetry{})

	err := uc.ProcessMessage(t.Context(), newTestMessage("no links here"), conv)
	require.Error(t, err)
}

func TestProcessMessagePicksFirstValidLink(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: &models.ProductDetails{Title: "X", Price: 1}}
	conv := &fakeConversation{}
	uc := NewMessageUsecase(api, &fakeTelemetry{})

	msg := newTestMessage("https://www.aliexpress.com/item/111.html and https://www.aliexpress.com/item/222.html")
	require.NoError(t, uc.ProcessMessage(t.Context(), msg, conv))
	require.Len(t, conv.edits, 1)
}
