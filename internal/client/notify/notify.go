// Package notify delivers transient user-visible messages.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier shows one transient message per call.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console writes notifications to w, one per line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Success implements Notifier.
func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "✅ %s\n", msg)
}

// Error implements Notifier.
func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "❌ %s\n", msg)
}

// Log routes notifications into a zap logger.
type Log struct {
	L *zap.Logger
}

// Success implements Notifier.
func (l Log) Success(msg string) { l.L.Info("notification", zap.String("message", msg)) }

// Error implements Notifier.
func (l Log) Error(msg string) { l.L.Warn("notification", zap.String("message", msg)) }

// Multi delivers every notification to each of its notifiers in order.
type Multi []Notifier

// Success implements Notifier.
func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

// Error implements Notifier.
func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}
