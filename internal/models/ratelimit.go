package models

import "time"

// RateLimitDecision is the outcome of one gate check. ResetTime is always
// now + window: the window slides with each call, it is not a fixed epoch.
type RateLimitDecision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"resetTime"`
	Message   string    `json:"message,omitempty"`
}
