package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pingCommand struct {
	Value string
}

func (c pingCommand) Validate() error {
	if c.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type spanRecorder struct {
	names []string
}

func (r *spanRecorder) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	r.names = append(r.names, name)
	return fn(ctx)
}

type timingRecorder struct {
	commands []string
	errs     []error
}

func (r *timingRecorder) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	r.commands = append(r.commands, commandName)
	r.errs = append(r.errs, err)
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()
	var got string
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		got = cmd.(pingCommand).Value
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{Value: "hi"}))
	assert.Equal(t, "hi", got)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	noop := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(pingCommand{}, noop))
	assert.Error(t, b.Register(pingCommand{}, noop))
}

func TestCommandBus_Errors(t *testing.T) {
	handlerErr := errors.New("boom")
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return handlerErr
	})))

	t.Run("validation", func(t *testing.T) {
		err := b.Send(context.Background(), pingCommand{})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("no handler", func(t *testing.T) {
		err := b.Send(context.Background(), otherCommand{})
		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})

	t.Run("handler failure keeps cause", func(t *testing.T) {
		err := b.Send(context.Background(), pingCommand{Value: "x"})
		assert.ErrorIs(t, err, ErrExecutionFailed)
		assert.ErrorIs(t, err, handlerErr)
	})
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(mark("outer"), mark("inner"))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{Value: "x"}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestCommandBus_ObservabilityMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := &spanRecorder{}
	recorder := &timingRecorder{}
	failure := errors.New("nope")

	b := NewCommandBus(
		LoggingMiddleware(zap.New(core)),
		TracingMiddleware(tracer),
		MetricsMiddleware(recorder),
	)
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		if cmd.(pingCommand).Value == "fail" {
			return failure
		}
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{Value: "ok"}))
	require.Error(t, b.Send(context.Background(), pingCommand{Value: "fail"}))

	assert.Equal(t, []string{"command.pingCommand", "command.pingCommand"}, tracer.names)
	assert.Equal(t, []string{"pingCommand", "pingCommand"}, recorder.commands)
	assert.NoError(t, recorder.errs[0])
	assert.ErrorIs(t, recorder.errs[1], failure)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Command failed", entries[1].Message)
}
