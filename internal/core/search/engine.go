package search

import (
	"search-service/internal/core/domain"
)

// Engine - поиск по коллекции в памяти.
type Engine struct {
	collection []domain.Property
}

func NewEngine(collection []domain.Property) *Engine {
	return &Engine{collection: collection}
}

// Search - validate, compile, assemble.
func (e *Engine) Search(raw RawFilters) (domain.SearchResult, error) {
	spec, err := Validate(raw)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return Assemble(Compile(spec), e.collection), nil
}
