package port

// SearchMetricsPort собирает статистику выполненных поисков.
type SearchMetricsPort interface {
	ObserveSearch(source string, total, returned int)
}
