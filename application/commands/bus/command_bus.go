// Package bus routes state-changing commands to their handlers through a
// shared middleware chain.
package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
	ErrExecutionFailed  = errors.New("command execution failed")
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Middleware decorates a handler
type Middleware func(next CommandHandler) CommandHandler

// CommandBus dispatches commands by their dynamic type. Handlers are wrapped
// with the bus middleware once, at registration.
type CommandBus struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
}

// NewCommandBus creates a new command bus. The first middleware is outermost.
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:    make(map[reflect.Type]CommandHandler),
		middlewares: middlewares,
	}
}

// Register binds handler to the type of cmdType. A type can be bound once.
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	t := reflect.TypeOf(cmdType)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Send validates cmd and runs its handler. Validation failures wrap
// ErrValidationFailed and handler failures wrap ErrExecutionFailed; the
// original error stays reachable through errors.Is and errors.As.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	if err := handler.Handle(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	return nil
}

func commandName(cmd Command) string {
	return reflect.TypeOf(cmd).Name()
}

// LoggingMiddleware logs every dispatch, failures at warn level
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)

			level, msg := zapcore.DebugLevel, "Command succeeded"
			if err != nil {
				level, msg = zapcore.WarnLevel, "Command failed"
			}
			if ce := logger.Check(level, msg); ce != nil {
				ce.Write(
					zap.String("type", commandName(cmd)),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
			}
			return err
		})
	}
}

// Tracer opens a trace span around a function
type Tracer interface {
	TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error
}

// TracingMiddleware runs each command inside a span named command.<Type>
func TracingMiddleware(tracer Tracer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return tracer.TraceFunction(ctx, "command."+commandName(cmd), func(ctx context.Context) error {
				return next.Handle(ctx, cmd)
			})
		})
	}
}

// ExecutionRecorder receives per-command timing
type ExecutionRecorder interface {
	RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error)
}

// MetricsMiddleware records duration and outcome of every command
func MetricsMiddleware(recorder ExecutionRecorder) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			recorder.RecordCommandExecution(ctx, commandName(cmd), time.Since(start), err)
			return err
		})
	}
}
