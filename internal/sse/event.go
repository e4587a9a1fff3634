// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Heartbeat is an SSE comment that keeps the connection alive.
// Comments (lines starting with :) are ignored by SSE clients.
const Heartbeat = ": heartbeat\n\n"

// Event is one message on an event stream. Empty fields are left out.
type Event struct {
	ID    string
	Name  string
	Data  string
	Retry time.Duration // reconnect delay hint for the client
}

// String renders the event in wire format. Multiline data is split into
// one "data:" line per line.
func (e Event) String() string {
	var sb strings.Builder

	if e.ID != "" {
		fmt.Fprintf(&sb, "id: %s\n", e.ID)
	}
	if e.Name != "" {
		fmt.Fprintf(&sb, "event: %s\n", e.Name)
	}
	if e.Retry > 0 {
		fmt.Fprintf(&sb, "retry: %d\n", e.Retry.Milliseconds())
	}
	for line := range strings.SplitSeq(e.Data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}
	sb.WriteString("\n")

	return sb.String()
}

// NewJSONEvent builds a named event whose data is v encoded as JSON.
func NewJSONEvent(eventName string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", eventName, err)
	}
	return Event{Name: eventName, Data: string(data)}, nil
}
