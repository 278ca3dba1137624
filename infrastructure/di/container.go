package di

import (
	"net/http"

	"memoryhub/application/commands/bus"
	commandhandlers "memoryhub/application/commands/handlers"
	querybus "memoryhub/application/queries/bus"
	"memoryhub/infrastructure/config"
	"memoryhub/pkg/auth"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	CreateHandler *commandhandlers.CreateMemoryHandler
	RateLimiter   auth.RateLimiter
	Handler       http.Handler
}

// Close flushes background work. Forwarding goroutines started by the create
// handler are allowed to finish before the logger is synced.
func (c *Container) Close() {
	c.CreateHandler.Wait()
	_ = c.Logger.Sync()
}
