package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	NATS    NATSConfig    `mapstructure:"nats"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	S3      S3Config      `mapstructure:"s3"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	SenderEmail string `mapstructure:"sender_email"`
	Encryption  string `mapstructure:"encryption"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

type CacheConfig struct {
	SearchTTL  time.Duration `mapstructure:"search_ttl"`
	EntityTTL  time.Duration `mapstructure:"entity_ttl"`
	PopularTTL time.Duration `mapstructure:"popular_ttl"`
}

type SearchConfig struct {
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	AnalyticsWindow time.Duration `mapstructure:"analytics_window"`
	ExpiryDays      int           `mapstructure:"expiry_days"`
}

type WorkerConfig struct {
	PoolSize   int `mapstructure:"pool_size"`
	QueueDepth int `mapstructure:"queue_depth"`
}

type AlertsConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("http.read_timeout", "15s")
	viper.SetDefault("http.write_timeout", "15s")
	viper.SetDefault("http.shutdown_timeout", "10s")

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "dreamhome")
	viper.SetDefault("mongo.connect_timeout", "10s")
	viper.SetDefault("mongo.min_pool_size", 0)
	viper.SetDefault("mongo.max_pool_size", 100)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.connect_timeout", "5s")

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.encryption", "starttls")

	viper.SetDefault("s3.endpoint", "localhost:9000")
	viper.SetDefault("s3.bucket", "dreamhome-photos")
	viper.SetDefault("s3.use_ssl", false)

	viper.SetDefault("cache.search_ttl", "5m")
	viper.SetDefault("cache.entity_ttl", "30m")
	viper.SetDefault("cache.popular_ttl", "1h")

	viper.SetDefault("search.query_timeout", "10s")
	viper.SetDefault("search.analytics_window", "168h")
	viper.SetDefault("search.expiry_days", 90)

	viper.SetDefault("worker.pool_size", 4)
	viper.SetDefault("worker.queue_depth", 1024)

	viper.SetDefault("alerts.chunk_size", 100)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	viper.SetDefault("tracing.service_name", "dreamhome")

	viper.SetDefault("logger.level", "info")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if fi, _ := os.Stat(path); !fi.IsDir() {
			viper.SetConfigFile(path)
		} else {
			viper.AddConfigPath(path)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DREAMHOME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found; using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
