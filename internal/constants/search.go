package constants

// Пространство имен метрик Prometheus
const MetricsNamespace = "search_service"

// Источники поискового запроса в метриках
const (
	SearchSourceQuery = "query"
	SearchSourceBody  = "body"
)
