package handlers

import (
	"net/http"

	"memoryhub/application/commands"
	"memoryhub/application/commands/bus"
	"memoryhub/application/queries"
	querybus "memoryhub/application/queries/bus"
	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"
	"memoryhub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MemoryHandler {
	return &MemoryHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateMemoryRequest represents the request body for creating a memory
type CreateMemoryRequest struct {
	Content    string                 `json:"content" validate:"required,max=10000"`
	MemoryType string                 `json:"memory_type,omitempty"`
	Priority   string                 `json:"priority,omitempty"`
	Source     string                 `json:"source,omitempty"`
	ProjectID  *string                `json:"project_id,omitempty" validate:"omitempty,max=100"`
	Tags       []string               `json:"tags,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SearchMemoriesRequest represents the request body for a search
type SearchMemoriesRequest struct {
	Query       string   `json:"query" validate:"required,max=1000"`
	MemoryTypes []string `json:"memory_types,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	ProjectID   *string  `json:"project_id,omitempty"`
	Limit       *int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// LegacyMessage is one chat message of the legacy add endpoint
type LegacyMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// LegacyAddRequest is the body accepted by POST /memories/add
type LegacyAddRequest struct {
	Messages []LegacyMessage        `json:"messages"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DeleteMemoryResponse confirms a deletion
type DeleteMemoryResponse struct {
	Message  string `json:"message"`
	MemoryID string `json:"memory_id"`
}

// CreateMemory handles POST /memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	cmd := commands.CreateMemoryCommand{
		Content:  req.Content,
		Category: req.MemoryType,
		Priority: req.Priority,
		Source:   req.Source,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	}
	if req.ProjectID != nil {
		cmd.ProjectID = *req.ProjectID
	}
	h.create(w, r, cmd)
}

// AddMemoryLegacy handles POST /memories/add. Only the first message is
// stored, and the source is always chatgpt.
func (h *MemoryHandler) AddMemoryLegacy(w http.ResponseWriter, r *http.Request) {
	var req LegacyAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if len(req.Messages) == 0 {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("No messages provided"))
		return
	}

	h.create(w, r, commands.CreateMemoryCommand{
		Content:  req.Messages[0].Content,
		Source:   string(valueobjects.SourceChatGPT),
		Metadata: req.Metadata,
	})
}

// create dispatches the command and reads the stored record back
func (h *MemoryHandler) create(w http.ResponseWriter, r *http.Request, cmd commands.CreateMemoryCommand) {
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// The ID is generated here so the record can be fetched after the command
	cmd.MemoryID = uuid.New().String()
	cmd.UserID = user.UserID

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetMemoryQuery{
		UserID:   user.UserID,
		MemoryID: cmd.MemoryID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Memory created",
		zap.String("memoryID", cmd.MemoryID),
		zap.String("userID", user.UserID),
	)
	respondJSON(w, http.StatusOK, result, h.logger)
}

// SearchMemories handles POST /memories/search
func (h *MemoryHandler) SearchMemories(w http.ResponseWriter, r *http.Request) {
	var req SearchMemoriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	query := queries.SearchMemoriesQuery{
		UserID:     user.UserID,
		Query:      req.Query,
		Categories: req.MemoryTypes,
		Sources:    req.Sources,
		Limit:      queries.DefaultSearchLimit,
	}
	if req.Limit != nil {
		query.Limit = *req.Limit
	}
	if req.ProjectID != nil {
		query.ProjectID = *req.ProjectID
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result, h.logger)
}

// ListMemories handles GET /memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListMemoriesQuery{UserID: user.UserID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result, h.logger)
}

// ListProjects handles GET /memories/projects
func (h *MemoryHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListProjectsQuery{UserID: user.UserID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result, h.logger)
}

// GetMemory handles GET /memories/{memoryID}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetMemoryQuery{
		UserID:   user.UserID,
		MemoryID: chi.URLParam(r, "memoryID"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result, h.logger)
}

// DeleteMemory handles DELETE /memories/{memoryID}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	memoryID := chi.URLParam(r, "memoryID")

	if err := h.commandBus.Send(r.Context(), commands.DeleteMemoryCommand{
		UserID:   user.UserID,
		MemoryID: memoryID,
	}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, DeleteMemoryResponse{
		Message:  "Memory deleted successfully",
		MemoryID: memoryID,
	}, h.logger)
}
