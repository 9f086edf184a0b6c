package rabbitmq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"search-service/internal/contextkeys"
	"search-service/internal/contracts"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
	"search-service/pkg/rabbitmq/rabbitmq_common"
	"search-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	amqp "github.com/rabbitmq/amqp091-go"
)

const sourceKeyGeohashPrecision = 7

// PropertyListedDTO - тело события property.listed.
type PropertyListedDTO struct {
	Source        string   `json:"source"`
	SourceID      string   `json:"source_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PropertyType  string   `json:"property_type"`
	ListingType   string   `json:"listing_type"`
	Price         int64    `json:"price"`
	Area          int      `json:"area"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	ParkingSpaces int      `json:"parking_spaces"`
	YearBuilt     *int     `json:"year_built"`
	HasElevator   bool     `json:"has_elevator"`
	HasBalcony    bool     `json:"has_balcony"`
	HasStorage    bool     `json:"has_storage"`
	IsFeatured    bool     `json:"is_featured"`
	City          string   `json:"city"`
	District      string   `json:"district"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Amenities     []string `json:"amenities"`
}

func (dto PropertyListedDTO) toDomain() domain.NewPropertyInput {
	return domain.NewPropertyInput{
		Title:         dto.Title,
		Description:   dto.Description,
		PropertyType:  dto.PropertyType,
		ListingType:   dto.ListingType,
		Price:         dto.Price,
		Area:          dto.Area,
		Bedrooms:      dto.Bedrooms,
		Bathrooms:     dto.Bathrooms,
		ParkingSpaces: dto.ParkingSpaces,
		YearBuilt:     dto.YearBuilt,
		HasElevator:   dto.HasElevator,
		HasBalcony:    dto.HasBalcony,
		HasStorage:    dto.HasStorage,
		IsFeatured:    dto.IsFeatured,
		City:          dto.City,
		District:      dto.District,
		Address:       dto.Address,
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
		Amenities:     dto.Amenities,
		SourceKey:     dto.sourceKey(),
	}
}

// sourceKey - ключ объявления для дедупликации. Если парсер прислал свой id,
// берем его, иначе хэш ключевых полей объявления.
func (dto PropertyListedDTO) sourceKey() string {
	if id := strings.TrimSpace(dto.SourceID); id != "" {
		return strings.ToLower(strings.TrimSpace(dto.Source)) + ":" + id
	}

	location := "null"
	if dto.Latitude != nil && dto.Longitude != nil {
		location = geohash.EncodeWithPrecision(*dto.Latitude, *dto.Longitude, sourceKeyGeohashPrecision)
	}
	parts := []string{
		location,
		dto.PropertyType,
		dto.ListingType,
		strconv.FormatInt(dto.Price, 10),
		strconv.Itoa(dto.Area),
		strconv.Itoa(dto.Bedrooms),
		strings.ToLower(strings.TrimSpace(dto.City)),
		strings.ToLower(strings.TrimSpace(dto.District)),
		strings.ToLower(strings.TrimSpace(dto.Address)),
		strings.ToLower(strings.TrimSpace(dto.Title)),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "hash:" + hex.EncodeToString(sum[:])
}

// MessageConsumer - то, что адаптеру нужно от rabbitmq_consumer.Consumer.
type MessageConsumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// PropertyListedConsumerAdapter - входящий адаптер: объявления из очереди
// попадают в каталог через CreatePropertyUseCase.
type PropertyListedConsumerAdapter struct {
	consumer MessageConsumer
	useCase  usecases_port.CreatePropertyUseCase
	logger   port.LoggerPort
}

func NewPropertyListedConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.CreatePropertyUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*PropertyListedConsumerAdapter, error) {
	adapter := &PropertyListedConsumerAdapter{
		useCase: useCase,
		logger:  logger.WithFields(port.Fields{"component": "PropertyListedConsumerAdapter"}),
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.handleDelivery, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listed properties: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

// handleDelivery разбирает одно событие и создает объект.
// Ошибки контракта постоянные, ошибки хранилища - временные.
func (a *PropertyListedConsumerAdapter) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := contracts.Validate(contracts.PropertyListedEventV1, d.Body); err != nil {
		msgLogger.Warn("Message failed schema validation", port.Fields{"error": err.Error()})
		return rabbitmq_consumer.Permanent(err)
	}

	var dto PropertyListedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Warn("Failed to unmarshal message body", port.Fields{"error": err.Error()})
		return rabbitmq_consumer.Permanent(err)
	}

	property, err := a.useCase.Execute(ctx, dto.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrPropertyAlreadyExists) {
			msgLogger.Warn("Listing already ingested", port.Fields{"redelivered": d.Redelivered})
			return rabbitmq_consumer.Permanent(err)
		}
		if _, ok := domain.AsValidationError(err); ok {
			return rabbitmq_consumer.Permanent(err)
		}
		return fmt.Errorf("create listed property: %w", err)
	}

	msgLogger.Info("Listed property ingested", port.Fields{"property_id": property.ID.String()})
	return nil
}

// Start блокируется до отмены ctx.
func (a *PropertyListedConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting consumer", nil)
	return a.consumer.StartConsuming(ctx)
}

func (a *PropertyListedConsumerAdapter) Stop() error {
	a.logger.Info("Stopping consumer", nil)
	return a.consumer.Close()
}
