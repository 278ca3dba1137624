package handlers

import (
	"context"
	"fmt"
	"time"

	"memoryhub/application/ports"
	"memoryhub/application/queries"
	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	"memoryhub/domain/services"
	"memoryhub/pkg/observability"

	"go.uber.org/zap"
)

// SearchMemoriesHandler ranks a user's memories and, when configured, merges
// in the recall service's own results.
type SearchMemoriesHandler struct {
	memoryRepo    ports.MemoryRepository
	recall        ports.RecallClient
	recallTimeout time.Duration
	metrics       *observability.Collector
	logger        *zap.Logger
}

// NewSearchMemoriesHandler creates a new search handler
func NewSearchMemoriesHandler(
	memoryRepo ports.MemoryRepository,
	recall ports.RecallClient,
	recallTimeout time.Duration,
	metrics *observability.Collector,
	logger *zap.Logger,
) *SearchMemoriesHandler {
	return &SearchMemoriesHandler{
		memoryRepo:    memoryRepo,
		recall:        recall,
		recallTimeout: recallTimeout,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle executes the search
func (h *SearchMemoriesHandler) Handle(ctx context.Context, q queries.SearchMemoriesQuery) (*queries.SearchMemoriesResult, error) {
	categories, err := valueobjects.ParseCategories(q.Categories)
	if err != nil {
		return nil, err
	}
	sources, err := valueobjects.ParseSources(q.Sources)
	if err != nil {
		return nil, err
	}

	memories, err := h.memoryRepo.GetByOwner(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}

	ranked := services.Retrieve(memories, services.SearchFilter{
		Query:      q.Query,
		Categories: categories,
		Sources:    sources,
		ProjectID:  q.ProjectID,
	}, q.Limit)

	h.metrics.RecordSearch(len(ranked))

	return &queries.SearchMemoriesResult{
		Query:         q.Query,
		Results:       newViews(ranked),
		RecallResults: h.searchRecall(ctx, q),
		Total:         len(ranked),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// searchRecall never fails the search; an unavailable recall service yields
// an empty list.
func (h *SearchMemoriesHandler) searchRecall(ctx context.Context, q queries.SearchMemoriesQuery) []map[string]interface{} {
	empty := []map[string]interface{}{}
	if h.recall == nil || !h.recall.Enabled() {
		return empty
	}

	if h.recallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.recallTimeout)
		defer cancel()
	}

	results, err := h.recall.Search(ctx, q.UserID, q.Query, q.Limit)
	if err != nil {
		h.logger.Error("Recall search failed",
			zap.String("userID", q.UserID),
			zap.Error(err),
		)
		return empty
	}
	if results == nil {
		return empty
	}
	return results
}

// ListMemoriesHandler lists every memory of a user, newest first
type ListMemoriesHandler struct {
	memoryRepo ports.MemoryRepository
	logger     *zap.Logger
}

// NewListMemoriesHandler creates a new list handler
func NewListMemoriesHandler(memoryRepo ports.MemoryRepository, logger *zap.Logger) *ListMemoriesHandler {
	return &ListMemoriesHandler{
		memoryRepo: memoryRepo,
		logger:     logger,
	}
}

// Handle executes the listing
func (h *ListMemoriesHandler) Handle(ctx context.Context, q queries.ListMemoriesQuery) (*queries.ListMemoriesResult, error) {
	memories, err := h.memoryRepo.GetByOwner(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}

	sorted := services.SortByCreatedDesc(memories)
	return &queries.ListMemoriesResult{
		Memories:  newViews(sorted),
		Total:     len(sorted),
		Timestamp: time.Now().UTC(),
	}, nil
}

// ListProjectsHandler returns the distinct projects of a user, served from
// cache when possible.
type ListProjectsHandler struct {
	memoryRepo ports.MemoryRepository
	cache      *queries.ProjectsCache
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewListProjectsHandler creates a new project listing handler. cache may be nil.
func NewListProjectsHandler(
	memoryRepo ports.MemoryRepository,
	cache *queries.ProjectsCache,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ListProjectsHandler {
	return &ListProjectsHandler{
		memoryRepo: memoryRepo,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle executes the project listing
func (h *ListProjectsHandler) Handle(ctx context.Context, q queries.ListProjectsQuery) (*queries.ListProjectsResult, error) {
	cached, generation, ok := h.cache.Lookup(ctx, q.UserID)
	if ok {
		h.metrics.RecordCache(true)
		return newProjectsResult(cached), nil
	}
	if h.cache != nil {
		h.metrics.RecordCache(false)
	}

	memories, err := h.memoryRepo.GetByOwner(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}
	projects := services.DistinctProjects(memories)

	if _, err := h.cache.Store(ctx, q.UserID, generation, projects); err != nil {
		h.logger.Warn("Failed to cache projects", zap.String("userID", q.UserID), zap.Error(err))
	}

	return newProjectsResult(projects), nil
}

func newProjectsResult(projects []string) *queries.ListProjectsResult {
	out := make([]string, len(projects))
	copy(out, projects)
	return &queries.ListProjectsResult{
		Projects: out,
		Total:    len(out),
	}
}

// GetMemoryHandler fetches a single memory owned by the caller
type GetMemoryHandler struct {
	memoryRepo ports.MemoryRepository
	logger     *zap.Logger
}

// NewGetMemoryHandler creates a new get handler
func NewGetMemoryHandler(memoryRepo ports.MemoryRepository, logger *zap.Logger) *GetMemoryHandler {
	return &GetMemoryHandler{
		memoryRepo: memoryRepo,
		logger:     logger,
	}
}

// Handle executes the lookup. Memories of other users are reported as missing.
func (h *GetMemoryHandler) Handle(ctx context.Context, q queries.GetMemoryQuery) (*queries.MemoryView, error) {
	memoryID, err := valueobjects.NewMemoryIDFromString(q.MemoryID)
	if err != nil {
		return nil, err
	}

	memory, err := h.memoryRepo.GetByOwnerAndID(ctx, q.UserID, memoryID)
	if err != nil {
		return nil, err
	}

	view := queries.NewMemoryView(memory)
	return &view, nil
}

func newViews(memories []*entities.Memory) []queries.MemoryView {
	views := make([]queries.MemoryView, 0, len(memories))
	for _, m := range memories {
		views = append(views, queries.NewMemoryView(m))
	}
	return views
}
