package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "memoryhub/pkg/errors"
)

// Source identifies where a memory was captured
type Source string

const (
	SourceChatGPT Source = "chatgpt"
	SourceCursor  Source = "cursor"
	SourceVoice   Source = "voice"
	SourceSlack   Source = "slack"
	SourceNotion  Source = "notion"
	SourceEmail   Source = "email"
	SourceManual  Source = "manual"
)

// DefaultSource is used when the caller omits a source
const DefaultSource = SourceManual

// ParseSource converts a raw string into a Source
func ParseSource(s string) (Source, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSource, nil
	}
	src := Source(s)
	if !src.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid source: %q", s))
	}
	return src, nil
}

// ParseSources converts a list of raw strings, failing on the first invalid entry
func ParseSources(values []string) ([]Source, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]Source, 0, len(values))
	for _, v := range values {
		src, err := ParseSource(v)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// IsValid reports whether s is a member of the closed set
func (s Source) IsValid() bool {
	switch s {
	case SourceChatGPT, SourceCursor, SourceVoice, SourceSlack,
		SourceNotion, SourceEmail, SourceManual:
		return true
	default:
		return false
	}
}

func (s Source) String() string {
	return string(s)
}
