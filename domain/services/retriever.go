package services

import (
	"sort"

	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
)

// SearchFilter narrows a retrieval. Empty sets and an empty project mean
// "no filter" for that dimension.
type SearchFilter struct {
	Query      string
	Categories []valueobjects.Category
	Sources    []valueobjects.Source
	ProjectID  string
}

// Matches reports whether m satisfies every supplied filter
func (f SearchFilter) Matches(m *entities.Memory) bool {
	if !m.Content().Contains(f.Query) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, m.Category()) {
		return false
	}
	if len(f.Sources) > 0 && !containsSource(f.Sources, m.Source()) {
		return false
	}
	if f.ProjectID != "" && m.ProjectID() != f.ProjectID {
		return false
	}
	return true
}

// Retrieve filters memories, ranks them by importance score descending and
// truncates to limit. Equal scores are ordered by creation time, newest
// first, then by ID so the result is deterministic. A non-positive limit
// yields an empty result. The input slice is not modified.
func Retrieve(memories []*entities.Memory, filter SearchFilter, limit int) []*entities.Memory {
	if limit <= 0 {
		return []*entities.Memory{}
	}

	results := make([]*entities.Memory, 0, len(memories))
	for _, m := range memories {
		if m != nil && filter.Matches(m) {
			results = append(results, m)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ImportanceScore() != b.ImportanceScore() {
			return a.ImportanceScore() > b.ImportanceScore()
		}
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID().String() < b.ID().String()
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SortByCreatedDesc returns a copy of memories ordered newest first
func SortByCreatedDesc(memories []*entities.Memory) []*entities.Memory {
	out := make([]*entities.Memory, 0, len(memories))
	for _, m := range memories {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// DistinctProjects returns the sorted set of non-empty project IDs
func DistinctProjects(memories []*entities.Memory) []string {
	seen := make(map[string]struct{})
	for _, m := range memories {
		if m == nil || m.ProjectID() == "" {
			continue
		}
		seen[m.ProjectID()] = struct{}{}
	}
	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}

func containsCategory(set []valueobjects.Category, c valueobjects.Category) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func containsSource(set []valueobjects.Source, s valueobjects.Source) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
