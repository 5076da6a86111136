package models

import "time"

// SupportTicket is one message filed by a user, optionally referencing
// a purchased product.
type SupportTicket struct {
	ProductID string    `json:"product_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
