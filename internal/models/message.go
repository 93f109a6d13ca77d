package models

// IncomingMessage is a chat message handed to the orchestrator by the
// transport layer.
type IncomingMessage struct {
	ChatID int64  `json:"chat_id"`
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// MessageHandle identifies a sent message so it can be edited later.
type MessageHandle struct {
	ChatID    int64
	MessageID int
}

// LinkButton is an inline action control attached to a reply.
type LinkButton struct {
	Text string
	URL  string
}

// SendOptions controls how a reply is rendered by the transport.
type SendOptions struct {
	ParseHTML          bool
	DisableLinkPreview bool
	Button             *LinkButton
}
