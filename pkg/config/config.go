package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig on top of the explicit tags below.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Shopify  ShopifyConfig
	Delivery DeliveryConfig
	Import   ImportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VEGGIEBOX_APP_ENV" default:"development"`
	Port         string `envconfig:"VEGGIEBOX_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"VEGGIEBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VEGGIEBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI            string        `envconfig:"VEGGIEBOX_MONGO_URI" required:"true"`
	Database       string        `envconfig:"VEGGIEBOX_MONGO_DB" default:"veggiebox"`
	ConnectTimeout time.Duration `envconfig:"VEGGIEBOX_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"VEGGIEBOX_MONGO_MAX_POOL_SIZE" default:"20"`
	MinPoolSize    uint64        `envconfig:"VEGGIEBOX_MONGO_MIN_POOL_SIZE" default:"2"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VEGGIEBOX_REDIS_URL"`
	Address      string        `envconfig:"VEGGIEBOX_REDIS_ADDR"`
	Password     string        `envconfig:"VEGGIEBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"VEGGIEBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VEGGIEBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VEGGIEBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VEGGIEBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VEGGIEBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VEGGIEBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
	WebhookTTL   time.Duration `envconfig:"VEGGIEBOX_WEBHOOK_DEDUPE_TTL" default:"24h"`
}

type ShopifyConfig struct {
	ShopName    string        `envconfig:"VEGGIEBOX_SHOPIFY_SHOP" required:"true"`
	APIVersion  string        `envconfig:"VEGGIEBOX_SHOPIFY_API_VERSION" default:"2021-01"`
	AccessToken string        `envconfig:"VEGGIEBOX_SHOPIFY_ACCESS_TOKEN" required:"true"`
	Timeout     time.Duration `envconfig:"VEGGIEBOX_SHOPIFY_TIMEOUT" default:"15s"`
}

// BaseURL returns the versioned admin API root for the configured shop.
func (s ShopifyConfig) BaseURL() string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", s.ShopName, s.APIVersion)
}

type DeliveryConfig struct {
	Timezone string `envconfig:"VEGGIEBOX_DELIVERY_TIMEZONE" default:"Pacific/Auckland"`
}

type ImportConfig struct {
	MaxUploadMB int `envconfig:"VEGGIEBOX_IMPORT_MAX_UPLOAD_MB" default:"10"`
	Concurrency int `envconfig:"VEGGIEBOX_IMPORT_CONCURRENCY" default:"8"`
}
