package services

import (
	"fmt"
	"testing"
	"time"

	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type memoryFixture struct {
	content   string
	category  valueobjects.Category
	source    valueobjects.Source
	projectID string
	score     int
	age       time.Duration
}

func buildMemory(t *testing.T, f memoryFixture) *entities.Memory {
	t.Helper()
	if f.category == "" {
		f.category = valueobjects.CategoryContext
	}
	if f.source == "" {
		f.source = valueobjects.SourceManual
	}
	m, err := entities.ReconstructMemory(entities.MemoryParams{
		ID:        valueobjects.NewMemoryID(),
		UserID:    "user-1",
		Content:   valueobjects.RestoreMemoryContent(f.content),
		Category:  f.category,
		Priority:  valueobjects.PriorityMedium,
		Source:    f.source,
		ProjectID: f.projectID,
		CreatedAt: baseTime.Add(-f.age),
	}, f.score)
	require.NoError(t, err)
	return m
}

func TestRetrieve_LimitKeepsHighestScore(t *testing.T) {
	low := buildMemory(t, memoryFixture{content: "meeting about budget", category: valueobjects.CategoryMeetingNote, score: 60})
	high := buildMemory(t, memoryFixture{content: "Meeting with the board", category: valueobjects.CategoryMeetingNote, score: 90})
	other := buildMemory(t, memoryFixture{content: "meeting prep checklist", category: valueobjects.CategoryActionItem, score: 99})

	got := Retrieve([]*entities.Memory{low, high, other}, SearchFilter{
		Query:      "meeting",
		Categories: []valueobjects.Category{valueobjects.CategoryMeetingNote},
	}, 1)

	require.Len(t, got, 1)
	assert.Equal(t, high.ID(), got[0].ID())
}

func TestRetrieve_Filters(t *testing.T) {
	memories := []*entities.Memory{
		buildMemory(t, memoryFixture{content: "Deploy plan for API", source: valueobjects.SourceSlack, projectID: "alpha", score: 50}),
		buildMemory(t, memoryFixture{content: "deploy rollback notes", source: valueobjects.SourceNotion, projectID: "beta", score: 70}),
		buildMemory(t, memoryFixture{content: "DEPLOY checklist", source: valueobjects.SourceSlack, projectID: "", score: 65, category: valueobjects.CategoryActionItem}),
		buildMemory(t, memoryFixture{content: "unrelated note", source: valueobjects.SourceSlack, projectID: "alpha", score: 100}),
	}

	tests := []struct {
		name      string
		filter    SearchFilter
		wantCount int
	}{
		{name: "query only is case insensitive", filter: SearchFilter{Query: "deploy"}, wantCount: 3},
		{name: "source filter", filter: SearchFilter{Query: "deploy", Sources: []valueobjects.Source{valueobjects.SourceSlack}}, wantCount: 2},
		{name: "multiple sources", filter: SearchFilter{Query: "deploy", Sources: []valueobjects.Source{valueobjects.SourceSlack, valueobjects.SourceNotion}}, wantCount: 3},
		{name: "project filter", filter: SearchFilter{Query: "deploy", ProjectID: "alpha"}, wantCount: 1},
		{name: "category filter", filter: SearchFilter{Query: "deploy", Categories: []valueobjects.Category{valueobjects.CategoryActionItem}}, wantCount: 1},
		{name: "all filters", filter: SearchFilter{
			Query:      "deploy",
			Categories: []valueobjects.Category{valueobjects.CategoryContext},
			Sources:    []valueobjects.Source{valueobjects.SourceNotion},
			ProjectID:  "beta",
		}, wantCount: 1},
		{name: "no match", filter: SearchFilter{Query: "kubernetes"}, wantCount: 0},
		{name: "empty query matches everything", filter: SearchFilter{Query: ""}, wantCount: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Retrieve(memories, tt.filter, 100)
			assert.Len(t, got, tt.wantCount)
			for _, m := range got {
				assert.True(t, tt.filter.Matches(m))
			}
		})
	}
}

func TestRetrieve_OrderingAndLimit(t *testing.T) {
	var memories []*entities.Memory
	for i := 0; i < 20; i++ {
		memories = append(memories, buildMemory(t, memoryFixture{
			content: fmt.Sprintf("note %d", i),
			score:   (i * 37) % 101,
			age:     time.Duration(i) * time.Minute,
		}))
	}

	for _, limit := range []int{1, 5, 20, 100} {
		got := Retrieve(memories, SearchFilter{Query: "note"}, limit)
		assert.LessOrEqual(t, len(got), limit)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].ImportanceScore(), got[i].ImportanceScore())
		}
	}
}

func TestRetrieve_TieBreakNewestFirst(t *testing.T) {
	older := buildMemory(t, memoryFixture{content: "tie older", score: 70, age: time.Hour})
	newer := buildMemory(t, memoryFixture{content: "tie newer", score: 70})

	got := Retrieve([]*entities.Memory{older, newer}, SearchFilter{Query: "tie"}, 10)

	require.Len(t, got, 2)
	assert.Equal(t, newer.ID(), got[0].ID())
	assert.Equal(t, older.ID(), got[1].ID())
}

func TestRetrieve_DoesNotMutateInput(t *testing.T) {
	a := buildMemory(t, memoryFixture{content: "x a", score: 10})
	b := buildMemory(t, memoryFixture{content: "x b", score: 90})
	input := []*entities.Memory{a, b}

	_ = Retrieve(input, SearchFilter{Query: "x"}, 10)

	assert.Equal(t, a.ID(), input[0].ID())
	assert.Equal(t, b.ID(), input[1].ID())
}

func TestRetrieve_NonPositiveLimit(t *testing.T) {
	m := buildMemory(t, memoryFixture{content: "anything", score: 10})
	assert.Empty(t, Retrieve([]*entities.Memory{m}, SearchFilter{}, 0))
	assert.Empty(t, Retrieve(nil, SearchFilter{}, 10))
}

func TestSortByCreatedDesc(t *testing.T) {
	oldest := buildMemory(t, memoryFixture{content: "a", score: 100, age: 2 * time.Hour})
	middle := buildMemory(t, memoryFixture{content: "b", score: 0, age: time.Hour})
	newest := buildMemory(t, memoryFixture{content: "c", score: 50})

	got := SortByCreatedDesc([]*entities.Memory{oldest, newest, middle})

	require.Len(t, got, 3)
	assert.Equal(t, newest.ID(), got[0].ID())
	assert.Equal(t, middle.ID(), got[1].ID())
	assert.Equal(t, oldest.ID(), got[2].ID())
}

func TestDistinctProjects(t *testing.T) {
	memories := []*entities.Memory{
		buildMemory(t, memoryFixture{content: "a", projectID: "beta"}),
		buildMemory(t, memoryFixture{content: "b", projectID: "alpha"}),
		buildMemory(t, memoryFixture{content: "c", projectID: "beta"}),
		buildMemory(t, memoryFixture{content: "d"}),
	}

	assert.Equal(t, []string{"alpha", "beta"}, DistinctProjects(memories))
	assert.Empty(t, DistinctProjects(nil))
}
