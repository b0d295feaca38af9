package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans view diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // ViewID -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber for viewID. The returned func unsubscribes;
// it is safe to call after Close.
func (sm *StreamManager) Subscribe(viewID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[viewID]; !ok {
		sm.subscribers[viewID] = make(map[chan string]struct{})
	}
	sm.subscribers[viewID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[viewID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, viewID)
		}
	}
}

// Broadcast sends msg to every subscriber of viewID, dropping it for slow clients.
func (sm *StreamManager) Broadcast(viewID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[viewID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "view_id", viewID)
		}
	}
}

// Close ends every stream of viewID.
func (sm *StreamManager) Close(viewID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ch := range sm.subscribers[viewID] {
		close(ch)
	}
	delete(sm.subscribers, viewID)
}

// Count returns the number of subscribers of viewID.
func (sm *StreamManager) Count(viewID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[viewID])
}
