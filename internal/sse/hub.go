// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans article notifications out to connected event streams.
package sse

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// bufferSize is how many events a slow stream may lag behind before
// further events are dropped for it.
const bufferSize = 16

// conn is one open event stream.
type conn struct {
	ch chan string
	id string
}

// Hub tracks open streams per user. A user may hold several streams,
// one per device or tab.
type Hub struct {
	users map[int64][]conn
	mu    sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{users: make(map[int64][]conn)}
}

// Register opens a stream for userID. It returns the connection ID used to
// unregister and the channel events arrive on.
func (h *Hub) Register(userID int64) (string, <-chan string) {
	c := conn{id: uuid.NewString(), ch: make(chan string, bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[userID] = append(h.users[userID], c)

	return c.id, c.ch
}

// Unregister closes the stream id of userID. Unknown IDs are ignored.
func (h *Hub) Unregister(userID int64, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.users[userID]
	gone, found := lo.Find(conns, func(c conn) bool { return c.id == id })
	if !found {
		return
	}
	close(gone.ch)

	rest := lo.Reject(conns, func(c conn, _ int) bool { return c.id == id })
	if len(rest) == 0 {
		delete(h.users, userID)
		return
	}
	h.users[userID] = rest
}

// SendToUser queues message on every stream of userID and returns how many
// streams accepted it. Full streams are skipped instead of blocking.
func (h *Hub) SendToUser(userID int64, message string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.sendLocked(h.users[userID], message)
}

// SendToUsers sends message to every stream of each user in userIDs.
func (h *Hub) SendToUsers(userIDs []int64, message string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, id := range lo.Uniq(userIDs) {
		delivered += h.sendLocked(h.users[id], message)
	}
	return delivered
}

// sendLocked must run under h.mu so no channel closes mid-send.
func (h *Hub) sendLocked(conns []conn, message string) int {
	delivered := 0
	for _, c := range conns {
		select {
		case c.ch <- message:
			delivered++
		default:
		}
	}
	return delivered
}

// ClientCount returns the total number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.users), func(conns []conn) int {
		return len(conns)
	})
}

// UserCount returns the number of unique users with open streams.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.users)
}
