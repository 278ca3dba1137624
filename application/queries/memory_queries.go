package queries

import (
	"strings"
	"time"
	"unicode/utf8"

	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
	MaxQueryLength     = 1000
)

// ProjectsCacheKey is the cache entry holding a user's project list
func ProjectsCacheKey(userID string) string {
	return "projects:" + userID
}

// SearchMemoriesQuery ranks a user's memories against a keyword and filters
type SearchMemoriesQuery struct {
	UserID     string
	Query      string
	Categories []string
	Sources    []string
	ProjectID  string
	Limit      int
}

// Validate validates the SearchMemoriesQuery
func (q SearchMemoriesQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if strings.TrimSpace(q.Query) == "" {
		return pkgerrors.NewValidationError("query is required")
	}
	if utf8.RuneCountInString(q.Query) > MaxQueryLength {
		return pkgerrors.NewValidationError("query exceeds maximum length")
	}
	if q.Limit < 1 || q.Limit > MaxSearchLimit {
		return pkgerrors.NewValidationError("limit must be between 1 and 100")
	}
	if _, err := valueobjects.ParseCategories(q.Categories); err != nil {
		return err
	}
	if _, err := valueobjects.ParseSources(q.Sources); err != nil {
		return err
	}
	return nil
}

// ListMemoriesQuery lists every memory of a user, newest first
type ListMemoriesQuery struct {
	UserID string
}

// Validate validates the ListMemoriesQuery
func (q ListMemoriesQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	return nil
}

// ListProjectsQuery lists the distinct project IDs a user has used
type ListProjectsQuery struct {
	UserID string
}

// Validate validates the ListProjectsQuery
func (q ListProjectsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	return nil
}

// GetMemoryQuery represents a query to get a single memory
type GetMemoryQuery struct {
	UserID   string
	MemoryID string
}

// Validate validates the GetMemoryQuery
func (q GetMemoryQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.MemoryID == "" {
		return pkgerrors.NewValidationError("memory ID is required")
	}
	return nil
}

// MemoryView is the read model of a memory returned by every query
type MemoryView struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Content         string                 `json:"content"`
	MemoryType      string                 `json:"memory_type"`
	Priority        string                 `json:"priority"`
	Source          string                 `json:"source"`
	ProjectID       *string                `json:"project_id"`
	Tags            []string               `json:"tags"`
	Metadata        map[string]interface{} `json:"metadata"`
	CreatedAt       time.Time              `json:"created_at"`
	ImportanceScore int                    `json:"importance_score"`
}

// NewMemoryView converts an entity to its read model
func NewMemoryView(m *entities.Memory) MemoryView {
	var projectID *string
	if p := m.ProjectID(); p != "" {
		projectID = &p
	}
	return MemoryView{
		ID:              m.ID().String(),
		UserID:          m.UserID(),
		Content:         m.Content().String(),
		MemoryType:      m.Category().String(),
		Priority:        m.Priority().String(),
		Source:          m.Source().String(),
		ProjectID:       projectID,
		Tags:            m.Tags(),
		Metadata:        m.Metadata(),
		CreatedAt:       m.CreatedAt(),
		ImportanceScore: m.ImportanceScore(),
	}
}

// SearchMemoriesResult is the ranked response of a search
type SearchMemoriesResult struct {
	Query         string                   `json:"query"`
	Results       []MemoryView             `json:"results"`
	RecallResults []map[string]interface{} `json:"recall_results"`
	Total         int                      `json:"total"`
	Timestamp     time.Time                `json:"timestamp"`
}

// ListMemoriesResult is the response of a full listing
type ListMemoriesResult struct {
	Memories  []MemoryView `json:"memories"`
	Total     int          `json:"total"`
	Timestamp time.Time    `json:"timestamp"`
}

// ListProjectsResult is the response of a project listing
type ListProjectsResult struct {
	Projects []string `json:"projects"`
	Total    int      `json:"total"`
}
