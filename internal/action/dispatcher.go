// Package action runs the pluggable command handlers attached to inbound
// messages.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/oguzkose/sms-notes-service/pkg/logger"
	"github.com/oguzkose/sms-notes-service/pkg/storage"
)

// Context is the read-only bundle passed to every handler. LogContent already
// includes the entry for the message being processed.
type Context struct {
	MessageText string
	LogContent  string
	From        string
	To          string
	MessageSID  string
	Location    string
	Timestamp   time.Time
	Store       storage.Store
}

// Result is the per-command outcome of one dispatch.
type Result struct {
	Command string `json:"command"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Err     error  `json:"-"`
}

type HandlerFunc func(ctx context.Context, actx *Context) (string, error)

// Registry maps command tokens to handlers. It is built once at startup and
// read-only afterwards, so Dispatch is safe for concurrent requests.
type Registry struct {
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

func (r *Registry) Register(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// Dispatch runs the registered handler for each command in order. Unknown
// commands are skipped with a log line and produce no result. A handler
// failure is recorded and does not stop the remaining commands: every command
// is attempted exactly once.
func (r *Registry) Dispatch(ctx context.Context, commands []string, actx *Context) []Result {
	var results []Result

	for _, cmd := range commands {
		h, ok := r.handlers[cmd]
		if !ok {
			logger.Infof("No handler registered for command: %s", cmd)
			continue
		}

		output, err := invoke(ctx, h, actx)
		if err != nil {
			logger.Errorf("Command %q failed: %v", cmd, err)
			results = append(results, Result{Command: cmd, Success: false, Err: err})
			continue
		}

		logger.Infof("Command %q processed successfully", cmd)
		results = append(results, Result{Command: cmd, Success: true, Output: output})
	}

	return results
}

// invoke shields the dispatch loop from a panicking handler.
func invoke(ctx context.Context, h HandlerFunc, actx *Context) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()

	return h(ctx, actx)
}
