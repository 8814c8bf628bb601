package audit

import (
	"time"
)

// Action names an audited account event.
type Action string

const (
	ActionUserRegistered          Action = "user_registered"
	ActionUserLoggedIn            Action = "user_logged_in"
	ActionLoginFailed             Action = "login_failed"
	ActionLoginLocked             Action = "login_locked"
	ActionUserLoggedOut           Action = "user_logged_out"
	ActionDealershipCreated       Action = "dealership_created"
	ActionSalespersonProfileSaved Action = "salesperson_profile_saved"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Client    Client    `json:"client"`
}

// Client is the parsed User-Agent, filled in by the publisher.
type Client struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
	Bot     bool   `json:"bot,omitempty"`
}
