package services

import (
	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
)

// Engine exposes the classifier, scorer and retriever behind one value so it
// can be injected where an entities.Enricher is expected.
type Engine struct{}

// NewEngine returns the memory engine
func NewEngine() Engine {
	return Engine{}
}

var _ entities.Enricher = Engine{}

func (Engine) Classify(text string) valueobjects.Category {
	return Classify(text)
}

func (Engine) ResolveCategory(requested valueobjects.Category, text string) valueobjects.Category {
	return ResolveCategory(requested, text)
}

func (Engine) Score(text string, category valueobjects.Category, metadata map[string]interface{}) int {
	return Score(text, category, metadata)
}

func (Engine) Retrieve(memories []*entities.Memory, filter SearchFilter, limit int) []*entities.Memory {
	return Retrieve(memories, filter, limit)
}
