package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config reúne todo lo configurable del binario.
// Orden de precedencia: defaults < archivo YAML (PETCLINIC_CONFIG) < .env < entorno.
type Config struct {
	Port    int    `yaml:"port" env:"PORT"`
	AppName string `yaml:"app_name" env:"APP_NAME"`

	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Billing  BillingConfig  `yaml:"billing"`
	Services ServiceURLs    `yaml:"services"`
	Products ProductsConfig `yaml:"products"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"`
	DSN    string `yaml:"dsn" env:"DB_DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	GroupID string `yaml:"group_id" env:"KAFKA_GROUP_ID"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTTTL        time.Duration `yaml:"jwt_ttl" env:"JWT_TTL"`
	VerifyMode    string        `yaml:"verify_mode" env:"AUTH_VERIFY_MODE"`
	AdminPassword string        `yaml:"admin_password" env:"AUTH_ADMIN_PASSWORD"`
}

type GatewayConfig struct {
	RateLimitRPS   int           `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	ClientTimeout  time.Duration `yaml:"client_timeout" env:"HTTP_CLIENT_TIMEOUT"`
}

type BillingConfig struct {
	OverdueSchedule string `yaml:"overdue_schedule" env:"BILLING_OVERDUE_SCHEDULE"`
}

type ProductsConfig struct {
	StatusSchedule string `yaml:"status_schedule" env:"PRODUCTS_STATUS_SCHEDULE"`
	ResetSchedule  string `yaml:"reset_schedule" env:"PRODUCTS_RESET_SCHEDULE"`
}

type ServiceURLs struct {
	Billing       string `yaml:"billing" env:"BILLING_URL"`
	Customers     string `yaml:"customers" env:"CUSTOMERS_URL"`
	Vets          string `yaml:"vets" env:"VETS_URL"`
	Inventory     string `yaml:"inventory" env:"INVENTORY_URL"`
	Products      string `yaml:"products" env:"PRODUCTS_URL"`
	Carts         string `yaml:"carts" env:"CARTS_URL"`
	Auth          string `yaml:"auth" env:"AUTH_URL"`
	Notifications string `yaml:"notifications" env:"NOTIFICATIONS_URL"`
}

const (
	VerifyLocal  = "local"
	VerifyRemote = "remote"
	VerifyDev    = "dev"
)

// Default devuelve la configuración para desarrollo local:
// todo in-memory, bus in-process y auth en modo dev.
func Default() Config {
	local := "http://localhost:8080"
	return Config{
		Port:    8080,
		AppName: "petclinic",
		Log:     LogConfig{Level: "info", Format: "text"},
		DB:      DBConfig{Driver: "pgx"},
		Kafka:   KafkaConfig{GroupID: "petclinic-notifications"},
		Auth: AuthConfig{
			JWTTTL:     time.Hour,
			VerifyMode: VerifyDev,
		},
		Gateway: GatewayConfig{
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			ClientTimeout:  10 * time.Second,
		},
		Billing: BillingConfig{OverdueSchedule: "@every 1h"},
		Products: ProductsConfig{
			StatusSchedule: "@daily",
			ResetSchedule:  "@every 720h", // cada 30 días
		},
		Services: ServiceURLs{
			Billing:       local,
			Customers:     local,
			Vets:          local,
			Inventory:     local,
			Products:      local,
			Carts:         local,
			Auth:          local,
			Notifications: local,
		},
	}
}

// Load arma la Config. path puede venir vacío; en ese caso se usa PETCLINIC_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv("PETCLINIC_CONFIG")
	}
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// .env es opcional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	switch c.DB.Driver {
	case "pgx", "mysql":
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DB.Driver)
	}
	switch c.Auth.VerifyMode {
	case VerifyLocal, VerifyRemote, VerifyDev:
	default:
		return fmt.Errorf("config: unsupported auth verify mode %q", c.Auth.VerifyMode)
	}
	if c.Auth.VerifyMode == VerifyLocal && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET required for local token verification")
	}
	return nil
}

// KafkaBrokers parsea la lista separada por comas. Vacío = bus in-process.
func (c Config) KafkaBrokers() []string {
	out := make([]string, 0)
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
