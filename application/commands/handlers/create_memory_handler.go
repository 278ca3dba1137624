package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"memoryhub/application/commands"
	"memoryhub/application/ports"
	"memoryhub/application/queries"
	"memoryhub/domain/config"
	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/validators"
	"memoryhub/domain/core/valueobjects"
	"memoryhub/pkg/observability"

	"go.uber.org/zap"
)

// CreateMemoryHandler handles the CreateMemoryCommand
type CreateMemoryHandler struct {
	memoryRepo     ports.MemoryRepository
	enricher       entities.Enricher
	validator      *validators.MemoryValidator
	domainConfig   *config.DomainConfig
	eventPublisher ports.EventPublisher
	recall         ports.RecallClient
	recallTimeout  time.Duration
	projects       *queries.ProjectsCache
	metrics        *observability.Collector
	failures       *observability.CloudWatchSink
	logger         *zap.Logger

	forwarding sync.WaitGroup
}

// CreateMemoryDeps groups the collaborators of CreateMemoryHandler. Recall,
// Projects, Metrics and Failures are optional.
type CreateMemoryDeps struct {
	MemoryRepo     ports.MemoryRepository
	Enricher       entities.Enricher
	DomainConfig   *config.DomainConfig
	EventPublisher ports.EventPublisher
	Recall         ports.RecallClient
	RecallTimeout  time.Duration
	Projects       *queries.ProjectsCache
	Metrics        *observability.Collector
	Failures       *observability.CloudWatchSink
	Logger         *zap.Logger
}

// NewCreateMemoryHandler creates a new handler instance
func NewCreateMemoryHandler(deps CreateMemoryDeps) *CreateMemoryHandler {
	cfg := deps.DomainConfig
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	enricher := deps.Enricher
	if !cfg.EnableAutoClassification {
		enricher = keepRequestedCategory{enricher}
	}
	return &CreateMemoryHandler{
		memoryRepo:     deps.MemoryRepo,
		enricher:       enricher,
		validator:      validators.NewMemoryValidator(cfg),
		domainConfig:   cfg,
		eventPublisher: deps.EventPublisher,
		recall:         deps.Recall,
		recallTimeout:  deps.RecallTimeout,
		projects:       deps.Projects,
		metrics:        deps.Metrics,
		failures:       deps.Failures,
		logger:         logger,
	}
}

// Handle executes the create memory command
func (h *CreateMemoryHandler) Handle(ctx context.Context, cmd commands.CreateMemoryCommand) (*entities.Memory, error) {
	memoryID, err := valueobjects.NewMemoryIDFromString(cmd.MemoryID)
	if err != nil {
		return nil, err
	}
	content, err := valueobjects.NewMemoryContentWithConfig(cmd.Content, h.domainConfig)
	if err != nil {
		return nil, err
	}
	category, err := valueobjects.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	priority, err := valueobjects.ParsePriority(cmd.Priority)
	if err != nil {
		return nil, err
	}
	source, err := valueobjects.ParseSource(cmd.Source)
	if err != nil {
		return nil, err
	}
	if err := h.validator.Validate(cmd.Tags, cmd.ProjectID, cmd.Metadata); err != nil {
		return nil, err
	}

	memory, err := entities.NewMemory(entities.MemoryParams{
		ID:        memoryID,
		UserID:    cmd.UserID,
		Content:   content,
		Category:  category,
		Priority:  priority,
		Source:    source,
		ProjectID: cmd.ProjectID,
		Tags:      cmd.Tags,
		Metadata:  cmd.Metadata,
	}, h.enricher)
	if err != nil {
		return nil, err
	}

	if err := h.memoryRepo.Save(ctx, memory); err != nil {
		return nil, fmt.Errorf("failed to save memory: %w", err)
	}

	h.invalidateProjects(ctx, cmd.UserID)
	h.metrics.RecordMemoryCreated(memory.Category().String())

	if err := h.eventPublisher.PublishBatch(ctx, memory.GetUncommittedEvents()); err != nil {
		// Events are informational; the memory is already stored
		h.logger.Warn("Failed to publish memory events",
			zap.String("memoryID", memory.ID().String()),
			zap.Error(err),
		)
	}
	memory.MarkEventsAsCommitted()

	h.forward(memory)

	h.logger.Info("Memory created",
		zap.String("memoryID", memory.ID().String()),
		zap.String("userID", memory.UserID()),
		zap.String("memoryType", memory.Category().String()),
		zap.Int("importanceScore", memory.ImportanceScore()),
	)

	return memory, nil
}

// Wait blocks until every in-flight recall forward has finished
func (h *CreateMemoryHandler) Wait() {
	h.forwarding.Wait()
}

// forward sends the memory to the recall service in the background. The
// request context is not used so the forward outlives the HTTP response.
func (h *CreateMemoryHandler) forward(memory *entities.Memory) {
	if h.recall == nil || !h.recall.Enabled() || !h.domainConfig.EnableRecallForwarding {
		h.metrics.RecordRecallForward(observability.OutcomeSkipped)
		return
	}

	record := ports.RecallRecord{
		UserID:   memory.UserID(),
		Content:  memory.Content().String(),
		Metadata: recallMetadata(memory),
	}

	h.forwarding.Add(1)
	go func() {
		defer h.forwarding.Done()

		ctx := context.Background()
		if h.recallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.recallTimeout)
			defer cancel()
		}

		if err := h.recall.Add(ctx, record); err != nil {
			h.metrics.RecordRecallForward(observability.OutcomeFailure)
			h.failures.RecordDependencyFailure(ctx, "recall")
			h.logger.Error("Failed to forward memory to recall service",
				zap.String("memoryID", memory.ID().String()),
				zap.Error(err),
			)
			return
		}
		h.metrics.RecordRecallForward(observability.OutcomeSuccess)
		h.logger.Debug("Memory forwarded to recall service",
			zap.String("memoryID", memory.ID().String()),
		)
	}()
}

func (h *CreateMemoryHandler) invalidateProjects(ctx context.Context, userID string) {
	if err := h.projects.Invalidate(ctx, userID); err != nil {
		h.logger.Warn("Failed to invalidate projects cache", zap.String("userID", userID), zap.Error(err))
	}
}

// recallMetadata is the caller metadata enriched with the memory's own fields
func recallMetadata(memory *entities.Memory) map[string]interface{} {
	metadata := memory.Metadata()
	metadata["memory_id"] = memory.ID().String()
	metadata["category"] = memory.Category().String()
	metadata["priority"] = memory.Priority().String()
	metadata["source"] = memory.Source().String()
	metadata["project_id"] = memory.ProjectID()
	metadata["tags"] = memory.Tags()
	return metadata
}

// keepRequestedCategory disables auto-classification while keeping scoring
type keepRequestedCategory struct {
	entities.Enricher
}

func (k keepRequestedCategory) ResolveCategory(requested valueobjects.Category, _ string) valueobjects.Category {
	if requested == "" {
		return valueobjects.DefaultCategory
	}
	return requested
}
