// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_String(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{"data only", Event{Data: "hello"}, "data: hello\n\n"},
		{"named", Event{Name: "article", Data: "hello"}, "event: article\ndata: hello\n\n"},
		{"multiline data", Event{Data: "line1\nline2"}, "data: line1\ndata: line2\n\n"},
		{"empty data still terminates", Event{Name: "ping"}, "event: ping\ndata: \n\n"},
		{
			"all fields",
			Event{ID: "42", Name: "connected", Data: "ok", Retry: 5 * time.Second},
			"id: 42\nevent: connected\nretry: 5000\ndata: ok\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.String())
		})
	}
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent("article", map[string]any{"title": "Engines", "id": 3})
	require.NoError(t, err)
	event.ID = "b7c1"

	assert.Equal(t, "id: b7c1\nevent: article\ndata: {\"id\":3,\"title\":\"Engines\"}\n\n", event.String())
}

func TestNewJSONEvent_Unencodable(t *testing.T) {
	_, err := NewJSONEvent("article", make(chan int))

	assert.Error(t, err)
}
