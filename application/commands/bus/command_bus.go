package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"marketplace/application/ports"

	"go.uber.org/zap"
)

// Command represents a command that changes state
type Command interface {
	CommandName() string
}

// Validator checks a command before it reaches its handler.
type Validator interface {
	Validate(cmd Command) error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (interface{}, error)
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) (interface{}, error)

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (interface{}, error) {
	return f(ctx, cmd)
}

// Typed adapts a handler method taking a concrete command type.
func Typed[C Command, R any](fn func(ctx context.Context, cmd C) (R, error)) CommandHandler {
	return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrUnexpectedCommand, cmd)
		}
		return fn(ctx, typed)
	})
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers    map[reflect.Type]CommandHandler
	validator   Validator
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewCommandBus creates a new command bus. validator may be nil.
func NewCommandBus(validator Validator, middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:    make(map[reflect.Type]CommandHandler),
		validator:   validator,
		middlewares: middlewares,
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	// Apply middleware in reverse order
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Send validates cmd and dispatches it to its handler. Errors are returned
// unwrapped so callers can render them.
func (b *CommandBus) Send(ctx context.Context, cmd Command) (interface{}, error) {
	if b.validator != nil {
		if err := b.validator.Validate(cmd); err != nil {
			return nil, err
		}
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}
	return handler.Handle(ctx, cmd)
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, cmd)

			fields := []zap.Field{
				zap.String("command", cmd.CommandName()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("Command failed", append(fields, zap.Error(err))...)
			} else {
				logger.Info("Command succeeded", fields...)
			}
			return result, err
		})
	}
}

// MetricsMiddleware counts command outcomes.
func MetricsMiddleware(metrics ports.Metrics) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			result, err := next.Handle(ctx, cmd)
			metrics.CommandHandled(cmd.CommandName(), err)
			return result, err
		})
	}
}

// Errors
var (
	ErrHandlerNotFound   = errors.New("command handler not found")
	ErrUnexpectedCommand = errors.New("unexpected command type")
)
