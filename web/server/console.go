package server

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// WebLogger implements core.Logger by collecting messages for the response
// of one render request
type WebLogger struct {
	mu       sync.Mutex
	messages []ConsoleMessage
}

// NewWebLogger creates an empty web logger
func NewWebLogger() *WebLogger {
	return &WebLogger{}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.messages = append(wl.messages, ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     "info",
	})
}

// Messages returns the collected messages in order
func (wl *WebLogger) Messages() []ConsoleMessage {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return append([]ConsoleMessage(nil), wl.messages...)
}
