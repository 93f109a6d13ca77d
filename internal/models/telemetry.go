package models

// ActionType tags a user action in the telemetry event log.
type ActionType string

const (
	ActionStartCommand    ActionType = "start_command"
	ActionHelpCommand     ActionType = "help_command"
	ActionStatsCommand    ActionType = "stats_command"
	ActionMessageReceived ActionType = "message_received"
	ActionLinkProcessed   ActionType = "link_processed_successfully"
	ActionProductNotFound ActionType = "product_not_found"
	ActionErrorProcessing ActionType = "error_processing_link"
)

// UsageEvent is one recorded user action. Events are append-only within
// a process lifetime.
type UsageEvent struct {
	UserID     int64      `json:"user_id"`
	ActionType ActionType `json:"action_type"`
	Timestamp  int64      `json:"timestamp"`
}

// Statistics is the rollup computed over the telemetry state.
type Statistics struct {
	TotalUsers            int `json:"total_users"`
	ActiveToday           int `json:"active_today"`
	ActiveThisWeek        int `json:"active_this_week"`
	TotalRequests         int `json:"total_requests"`
	SuccessfulConversions int `json:"successful_conversions"`
	FailedConversions     int `json:"failed_conversions"`
}
