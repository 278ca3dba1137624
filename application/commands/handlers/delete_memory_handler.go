package handlers

import (
	"context"
	"fmt"
	"time"

	"memoryhub/application/commands"
	"memoryhub/application/ports"
	"memoryhub/application/queries"
	"memoryhub/domain/core/valueobjects"
	"memoryhub/pkg/observability"

	"go.uber.org/zap"
)

// DeleteMemoryHandler handles memory deletion commands
type DeleteMemoryHandler struct {
	memoryRepo     ports.MemoryRepository
	eventPublisher ports.EventPublisher
	projects       *queries.ProjectsCache
	metrics        *observability.Collector
	logger         *zap.Logger
}

// NewDeleteMemoryHandler creates a new delete memory handler
func NewDeleteMemoryHandler(
	memoryRepo ports.MemoryRepository,
	eventPublisher ports.EventPublisher,
	projects *queries.ProjectsCache,
	metrics *observability.Collector,
	logger *zap.Logger,
) *DeleteMemoryHandler {
	return &DeleteMemoryHandler{
		memoryRepo:     memoryRepo,
		eventPublisher: eventPublisher,
		projects:       projects,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle executes the delete memory command
func (h *DeleteMemoryHandler) Handle(ctx context.Context, cmd commands.DeleteMemoryCommand) error {
	memoryID, err := valueobjects.NewMemoryIDFromString(cmd.MemoryID)
	if err != nil {
		return err
	}

	// Other users' memories read as missing
	memory, err := h.memoryRepo.GetByOwnerAndID(ctx, cmd.UserID, memoryID)
	if err != nil {
		return err
	}

	if err := h.memoryRepo.Delete(ctx, cmd.UserID, memoryID); err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}

	if err := h.projects.Invalidate(ctx, cmd.UserID); err != nil {
		h.logger.Warn("Failed to invalidate projects cache", zap.String("userID", cmd.UserID), zap.Error(err))
	}
	h.metrics.RecordMemoryDeleted()

	memory.MarkDeleted(time.Now().UTC())
	if err := h.eventPublisher.PublishBatch(ctx, memory.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish deletion event", zap.Error(err))
	}
	memory.MarkEventsAsCommitted()

	h.logger.Info("Memory deleted",
		zap.String("memoryID", cmd.MemoryID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
