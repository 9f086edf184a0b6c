package constants

// Обменник и ключи маршрутизации событий об объектах
const (
	PropertyEventsExchange     = "property.events"
	PropertyEventsExchangeType = "topic"

	RoutingKeyPropertyViewed = "property.viewed"
	RoutingKeyPropertyListed = "property.listed"
)

// Очередь новых объявлений от парсеров
const (
	PropertyListedQueue       = "search-service.property-listed"
	PropertyListedConsumerTag = "search-service-ingest"
	PropertyListedPrefetch    = 20
)
