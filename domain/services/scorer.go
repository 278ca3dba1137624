package services

import (
	"strings"
	"unicode/utf8"

	"memoryhub/domain/core/valueobjects"
)

const (
	MinImportanceScore = 0
	MaxImportanceScore = 100

	unknownCategoryScore = 50

	longContentThreshold  = 200
	shortContentThreshold = 50
	longContentBonus      = 10
	shortContentPenalty   = 10

	urgentBonus          = 20
	projectCriticalBonus = 15

	MetadataUrgent          = "urgent"
	MetadataProjectCritical = "project_critical"
)

var categoryBaseScores = map[valueobjects.Category]int{
	valueobjects.CategoryGoal:        80,
	valueobjects.CategoryDecision:    70,
	valueobjects.CategoryActionItem:  75,
	valueobjects.CategoryInsight:     65,
	valueobjects.CategoryContext:     50,
	valueobjects.CategoryReference:   40,
	valueobjects.CategoryCodeSnippet: 60,
	valueobjects.CategoryMeetingNote: 55,
}

// BaseScore returns the per-category starting score
func BaseScore(category valueobjects.Category) int {
	if score, ok := categoryBaseScores[category]; ok {
		return score
	}
	return unknownCategoryScore
}

// Score computes the importance of a memory in [0,100] from its content
// length, category and the "urgent"/"project_critical" metadata flags.
// A flag is set only by bool true, a non-zero number or the strings
// "true", "1" and "yes"; "false", "no" and lists never set it (see IsTruthy).
func Score(content string, category valueobjects.Category, metadata map[string]interface{}) int {
	score := BaseScore(category)

	length := utf8.RuneCountInString(content)
	switch {
	case length > longContentThreshold:
		score += longContentBonus
	case length < shortContentThreshold:
		score -= shortContentPenalty
	}

	if IsTruthy(metadata[MetadataUrgent]) {
		score += urgentBonus
	}
	if IsTruthy(metadata[MetadataProjectCritical]) {
		score += projectCriticalBonus
	}

	return clamp(score, MinImportanceScore, MaxImportanceScore)
}

// IsTruthy interprets a metadata value as a flag. Missing or malformed values
// are false.
func IsTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true
		}
		return false
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
