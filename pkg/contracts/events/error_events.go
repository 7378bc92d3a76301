// Package events contains event contract definitions for the FaultGate
// error feed. Events are published over WebSocket to connected observers
// whenever a request fails or a panic is recovered.
package events

import (
	"time"
)

// MessageType defines the type of feed message
type MessageType string

const (
	// MessageTypeConnection is sent once when a client connects
	MessageTypeConnection MessageType = "connection"

	// MessageTypeError is sent for every mapped request error
	MessageTypeError MessageType = "fault:error"

	// MessageTypePanic is sent for every recovered panic
	MessageTypePanic MessageType = "fault:panic"
)

// ErrorEvent describes one failed request as seen by the fault handler.
// All fields are already scrubbed; raw error text and attacker-supplied
// values never appear here.
type ErrorEvent struct {
	Type       MessageType `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	TraceID    string      `json:"trace_id,omitempty"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Status     int         `json:"status"`
	Problem    string      `json:"problem"`
	Title      string      `json:"title"`
	Kind       string      `json:"kind,omitempty"`
}

// ConnectionEvent is the greeting sent to a newly registered feed client.
type ConnectionEvent struct {
	Type     MessageType `json:"type"`
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	ClientID string      `json:"client_id"`
	SentAt   time.Time   `json:"sent_at"`
}
