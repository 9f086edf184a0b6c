package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type RESTConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// StorageConfig - где хранятся объекты и избранное.
type StorageConfig struct {
	Driver      string
	DatabaseURL string
	SeedFile    string // YAML с начальными объектами для memory-драйвера
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KVConfig - хранилище сохраненных фильтров и избранного без БД.
type KVConfig struct {
	Driver string
	Redis  RedisConfig
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
	// IngestEnabled - слушать очередь новых объявлений
	IngestEnabled bool
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
	File   string // если задан, лог дополнительно пишется в файл с ротацией
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type MetricsConfig struct {
	Enabled bool
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	Storage      StorageConfig
	KV           KVConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Metrics      MetricsConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env файл необязателен.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using environment variables.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "search-service")

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.Storage.Driver = strings.ToLower(getEnvAsString("STORAGE_DRIVER", DriverMemory))
	cfg.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Storage.SeedFile = os.Getenv("SEED_FILE")
	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for STORAGE_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	cfg.KV.Driver = strings.ToLower(getEnvAsString("KV_DRIVER", DriverMemory))
	cfg.KV.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
	cfg.KV.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.KV.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	if cfg.KV.Driver != DriverMemory && cfg.KV.Driver != DriverRedis {
		return nil, fmt.Errorf("unknown KV_DRIVER %q", cfg.KV.Driver)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.IngestEnabled = getEnvAsBool("RABBITMQ_INGEST_ENABLED", true)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("LOG_JSON", false)
	cfg.StdoutLogger.File = os.Getenv("LOG_FILE")

	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", true)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList читает список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
