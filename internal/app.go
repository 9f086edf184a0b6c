package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"search-service/internal/adapters/kvstore"
	logger_adapter "search-service/internal/adapters/logger"
	"search-service/internal/adapters/memory"
	"search-service/internal/adapters/metrics"
	postgres_adapter "search-service/internal/adapters/postgres"
	rabbitmq_adapter "search-service/internal/adapters/rabbitmq"
	"search-service/internal/adapters/rest"
	"search-service/internal/configs"
	"search-service/internal/constants"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/usecase"
	fluentlogger "search-service/pkg/fluent_logger"
	"search-service/pkg/postgres"
	"search-service/pkg/rabbitmq/rabbitmq_common"
	"search-service/pkg/rabbitmq/rabbitmq_consumer"
	"search-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	dbPool        *pgxpool.Pool
	redisClient   redis.UniversalClient
	rabbitManager *rabbitmq_common.ConnectionManager
	publisher     *rabbitmq_producer.Publisher
	ingest        *rabbitmq_adapter.PropertyListedConsumerAdapter

	fluentClient *fluent.Fluent
	logFile      io.Closer
	logger       port.LoggerPort
}

// persistence - выбранные по конфигурации хранилища.
type persistence struct {
	storage   port.PropertyStoragePort
	favorites port.FavoritesRepositoryPort
	kv        port.KeyValueStorePort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	app.logger = baseLogger.WithFields(port.Fields{"component": "app"})

	// все, что открыто до ошибки, закрывается здесь
	ok := false
	defer func() {
		if !ok {
			app.closeResources()
		}
	}()

	ctx := context.Background()

	persist, err := app.initPersistence(ctx)
	if err != nil {
		return nil, err
	}

	eventsPublisher, err := app.initEventsPublisher(baseLogger)
	if err != nil {
		return nil, err
	}

	var searchMetrics port.SearchMetricsPort = metrics.Noop{}
	var metricsHandler rest.MetricsHandler
	if appConfig.Metrics.Enabled {
		m := metrics.New(constants.MetricsNamespace)
		searchMetrics = m
		metricsHandler = m
	}

	// ИНИЦИАЛИЗАЦИЯ USE CASES
	storage := persist.storage
	createUseCase := usecase.NewCreatePropertyUseCase(storage)

	if appConfig.RabbitMQ.Enabled && appConfig.RabbitMQ.IngestEnabled {
		if err := app.initIngestConsumer(createUseCase, baseLogger); err != nil {
			return nil, err
		}
	}

	propertiesHandler := rest.NewPropertiesHandler(rest.PropertiesUseCases{
		SearchByQuery: usecase.NewSearchPropertiesUseCase(storage, searchMetrics, constants.SearchSourceQuery),
		SearchByBody:  usecase.NewSearchPropertiesUseCase(storage, searchMetrics, constants.SearchSourceBody),
		GetDetails:    usecase.NewGetPropertyDetailsUseCase(storage, eventsPublisher),
		Create:        createUseCase,
		UpdateStatus:  usecase.NewUpdatePropertyStatusUseCase(storage),
		Suggestions:   usecase.NewGetSuggestionsUseCase(storage),
		Locations:     usecase.NewGetLocationsUseCase(storage),
		Amenities:     usecase.NewGetAmenitiesUseCase(storage),
		Similar:       usecase.NewFindSimilarUseCase(storage),
		Nearby:        usecase.NewFindNearbyUseCase(storage),
	})
	favoritesHandler := rest.NewFavoritesHandler(
		usecase.NewAddToFavoritesUseCase(persist.favorites, storage),
		usecase.NewRemoveFromFavoritesUseCase(persist.favorites),
		usecase.NewToggleFavoriteUseCase(persist.favorites, storage),
		usecase.NewListFavoritesUseCase(persist.favorites, storage),
	)
	savedFiltersHandler := rest.NewSavedFiltersHandler(usecase.NewSavedFiltersUseCase(persist.kv))
	toolsHandler := rest.NewToolsHandler(usecase.NewCalculateMortgageUseCase(), usecase.NewComparePropertiesUseCase())
	analyticsHandler := rest.NewAnalyticsHandler(usecase.NewGetMarketAnalyticsUseCase(storage))

	router := rest.NewRouter(rest.RouterConfig{
		Properties:         propertiesHandler,
		Favorites:          favoritesHandler,
		SavedFilters:       savedFiltersHandler,
		Tools:              toolsHandler,
		Analytics:          analyticsHandler,
		Metrics:            metricsHandler,
		CORSAllowedOrigins: appConfig.Rest.CORSAllowedOrigins,
	}, baseLogger)
	app.apiServer = rest.NewServer(appConfig.Rest.Port, router, baseLogger)
	app.logger.Info("REST API server configured.", port.Fields{"metrics_enabled": appConfig.Metrics.Enabled})

	ok = true
	return app, nil
}

// initLoggers собирает stdout, файл и Fluent Bit в один мультилоггер.
func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	level := logger_adapter.ParseLevel(cfg.StdoutLogger.Level)
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    level,
		IsJSON:   cfg.StdoutLogger.IsJSON,
		UseColor: !cfg.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.StdoutLogger.File != "" {
		fileWriter := logger_adapter.NewRotatingFileWriter(logger_adapter.FileConfig{
			Filename: cfg.StdoutLogger.File,
			Compress: true,
		})
		a.logFile = fileWriter
		activeLoggers = append(activeLoggers, logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
			Writer: fileWriter,
			Level:  level,
			IsJSON: true,
		}))
	}

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		a.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
		"log_file":       cfg.StdoutLogger.File,
	})
	return baseLogger, nil
}

// initPersistence выбирает хранилище объектов, избранного и key-value.
func (a *App) initPersistence(ctx context.Context) (*persistence, error) {
	cfg := a.config
	p := &persistence{}

	switch cfg.KV.Driver {
	case configs.DriverRedis:
		client, err := kvstore.NewRedisClient(ctx, kvstore.RedisConfig{
			Addr:     cfg.KV.Redis.Addr,
			Password: cfg.KV.Redis.Password,
			DB:       cfg.KV.Redis.DB,
		})
		if err != nil {
			a.logger.Error("Failed to connect to Redis", err, nil)
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redisClient = client
		store, err := kvstore.NewRedisStore(client)
		if err != nil {
			return nil, err
		}
		p.kv = store
		a.logger.Info("Successfully connected to Redis!", port.Fields{"addr": cfg.KV.Redis.Addr})
	default:
		p.kv = kvstore.NewMemoryStore()
	}

	switch cfg.Storage.Driver {
	case configs.DriverPostgres:
		dbPool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.Storage.DatabaseURL})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = dbPool
		a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			a.logger.Error("Failed to apply database schema", err, nil)
			return nil, err
		}

		storage, err := postgres_adapter.NewPropertyRepository(dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres property repository: %w", err)
		}
		favorites, err := postgres_adapter.NewFavoritesRepository(dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres favorites repository: %w", err)
		}
		p.storage, p.favorites = storage, favorites

	default:
		var seed []domain.Property
		if cfg.Storage.SeedFile != "" {
			props, err := memory.LoadSeedFile(cfg.Storage.SeedFile)
			if err != nil {
				a.logger.Error("Failed to load seed file", err, port.Fields{"path": cfg.Storage.SeedFile})
				return nil, err
			}
			seed = props
			a.logger.Info("Seed file loaded", port.Fields{"path": cfg.Storage.SeedFile, "properties": len(props)})
		}
		storage, err := memory.NewPropertyRepository(seed)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory property repository: %w", err)
		}
		p.storage = storage

		// без БД избранное живет там же, где сохраненные фильтры
		if cfg.KV.Driver == configs.DriverRedis {
			favorites, err := kvstore.NewRedisFavoritesRepository(a.redisClient)
			if err != nil {
				return nil, err
			}
			p.favorites = favorites
		} else {
			favorites, err := kvstore.NewFavoritesRepository(p.kv)
			if err != nil {
				return nil, err
			}
			p.favorites = favorites
		}
	}

	a.logger.Info("All persistence adapters initialized.", port.Fields{
		"storage_driver": cfg.Storage.Driver,
		"kv_driver":      cfg.KV.Driver,
	})
	return p, nil
}

func (a *App) initEventsPublisher(baseLogger port.LoggerPort) (port.PropertyEventsPublisherPort, error) {
	if !a.config.RabbitMQ.Enabled {
		a.logger.Info("RabbitMQ disabled, property events are not published", nil)
		return rabbitmq_adapter.NoopPropertyEventsPublisher{}, nil
	}

	rabbitLogger := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq"}))
	baseCfg := rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}

	manager, err := rabbitmq_common.NewManager(baseCfg, rabbitLogger)
	if err != nil {
		a.logger.Error("Failed to create RabbitMQ connection manager", err, nil)
		return nil, fmt.Errorf("failed to create RabbitMQ connection manager: %w", err)
	}
	a.rabbitManager = manager

	publisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   baseCfg,
		ExchangeName:             constants.PropertyEventsExchange,
		ExchangeType:             constants.PropertyEventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitLogger,
	}, manager)
	if err != nil {
		a.logger.Error("Failed to create RabbitMQ publisher", err, nil)
		return nil, fmt.Errorf("failed to create RabbitMQ publisher: %w", err)
	}
	a.publisher = publisher

	adapter, err := rabbitmq_adapter.NewPropertyEventsAdapter(publisher)
	if err != nil {
		return nil, err
	}
	a.logger.Info("RabbitMQ publisher initialized", port.Fields{"exchange": constants.PropertyEventsExchange})
	return adapter, nil
}

func (a *App) initIngestConsumer(createUseCase *usecase.CreatePropertyUseCase, baseLogger port.LoggerPort) error {
	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
		QueueName:              constants.PropertyListedQueue,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.PropertyEventsExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.PropertyEventsExchangeType,
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyPropertyListed,
		PrefetchCount:          constants.PropertyListedPrefetch,
		ConsumerTag:            constants.PropertyListedConsumerTag,
	}

	ingest, err := rabbitmq_adapter.NewPropertyListedConsumerAdapter(consumerCfg, createUseCase, baseLogger, a.rabbitManager)
	if err != nil {
		a.logger.Error("Failed to create listed property consumer", err, nil)
		return err
	}
	a.ingest = ingest
	a.logger.Info("Listed property consumer initialized", port.Fields{"queue": constants.PropertyListedQueue})
	return nil
}

// Run запускает сервер и ждет сигнала на завершение.
func (a *App) Run() error {
	defer a.closeResources()

	a.logger.Info("Application is starting...", nil)

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	serverErrors := make(chan error, 2)
	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	if a.ingest != nil {
		go func() {
			if err := a.ingest.Start(appCtx); err != nil {
				serverErrors <- fmt.Errorf("listed property consumer stopped: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Rest.Port})

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("Component failed, shutting down", err, nil)
		runErr = err
	}

	cancelApp()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}

	return runErr
}

// closeResources закрывает внешние соединения в обратном порядке открытия.
func (a *App) closeResources() {
	if a.ingest != nil {
		if err := a.ingest.Stop(); err != nil {
			a.logger.Error("Error closing listed property consumer", err, nil)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ publisher", err, nil)
		}
	}
	if a.rabbitManager != nil {
		if err := a.rabbitManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
