// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailRequestedEvent is published when the service needs an email
// delivered, currently only OTP verification codes.  It carries the full
// message so the consumer never queries the primary database; in
// particular the OTP code travels inside the event and is not readable
// anywhere else.
type EmailRequestedEvent struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTML        string `json:"html,omitempty"`
	Text        string `json:"text,omitempty"`
	Kind        string `json:"kind"` // e.g. "otp"
	RequestedAt string `json:"requested_at"`
}
