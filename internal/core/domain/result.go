package domain

// SearchResult - конверт с результатами и метаданными пагинации.
type SearchResult struct {
	Data       []Property
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// NewSearchResult собирает конверт. При total == 0 TotalPages тоже 0.
func NewSearchResult(data []Property, total, page, limit int) SearchResult {
	if data == nil {
		data = []Property{}
	}
	return SearchResult{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages - ceil(total / limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
