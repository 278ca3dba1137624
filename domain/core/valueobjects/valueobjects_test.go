package valueobjects

import (
	"encoding/json"
	"strings"
	"testing"

	"memoryhub/domain/config"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "", want: CategoryContext},
		{in: "goal", want: CategoryGoal},
		{in: " Meeting_Note ", want: CategoryMeetingNote},
		{in: "code_snippet", want: CategoryCodeSnippet},
		{in: "poem", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllCategoriesAreValid(t *testing.T) {
	all := AllCategories()
	assert.Len(t, all, 8)
	for _, c := range all {
		assert.True(t, c.IsValid(), c)
	}
	assert.True(t, CategoryContext.IsDefault())
	assert.False(t, CategoryGoal.IsDefault())
}

func TestParsePriorityAndSource(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority("CRITICAL")
	require.NoError(t, err)
	assert.Equal(t, PriorityCritical, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)

	s, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceManual, s)

	s, err = ParseSource("slack")
	require.NoError(t, err)
	assert.Equal(t, SourceSlack, s)

	_, err = ParseSource("fax")
	assert.Error(t, err)
}

func TestParseLists(t *testing.T) {
	cats, err := ParseCategories(nil)
	require.NoError(t, err)
	assert.Nil(t, cats)

	cats, err = ParseCategories([]string{"goal", "insight"})
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryGoal, CategoryInsight}, cats)

	_, err = ParseCategories([]string{"goal", "nope"})
	assert.Error(t, err)

	sources, err := ParseSources([]string{"email", "notion"})
	require.NoError(t, err)
	assert.Equal(t, []Source{SourceEmail, SourceNotion}, sources)

	_, err = ParseSources([]string{"carrier pigeon"})
	assert.Error(t, err)
}

func TestMemoryContent(t *testing.T) {
	cfg := config.DefaultDomainConfig()

	_, err := NewMemoryContentWithConfig("", cfg)
	assert.Error(t, err)

	_, err = NewMemoryContentWithConfig(" \n\t ", cfg)
	assert.Error(t, err)

	// the limit counts characters, not bytes
	exact := strings.Repeat("é", cfg.MaxContentLength)
	c, err := NewMemoryContentWithConfig(exact, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxContentLength, c.Length())

	_, err = NewMemoryContentWithConfig(exact+"x", cfg)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))

	c, err = NewMemoryContent("Ship the API by Friday")
	require.NoError(t, err)
	assert.True(t, c.Contains("api"))
	assert.True(t, c.Contains("SHIP"))
	assert.False(t, c.Contains("monday"))
	assert.False(t, c.IsEmpty())
}

func TestMemoryContent_Summary(t *testing.T) {
	c := RestoreMemoryContent("hello world")

	assert.Equal(t, "hello world", c.Summary(20))
	assert.Equal(t, "hello...", c.Summary(8))
	assert.Equal(t, "hel", c.Summary(3))
	assert.Equal(t, "", c.Summary(0))
}

func TestMemoryID(t *testing.T) {
	id := NewMemoryID()
	assert.False(t, id.IsZero())

	parsed, err := NewMemoryIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))

	_, err = NewMemoryIDFromString("")
	assert.Error(t, err)
	_, err = NewMemoryIDFromString("not-a-uuid")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded MemoryID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(id))
}
