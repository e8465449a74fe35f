package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Name    string `mapstructure:"name"`
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// DatabaseConfig selects the gorm dialector. DSN is used verbatim for postgres
// and sqlite, and overrides the MySQL fields when set.
type DatabaseConfig struct {
	Driver       string      `mapstructure:"driver"`
	DSN          string      `mapstructure:"dsn"`
	MySQL        MySQLConfig `mapstructure:"mysql"`
	MaxIdleConns int         `mapstructure:"max_idle_conns"`
	MaxOpenConns int         `mapstructure:"max_open_conns"`
	AutoMigrate  bool        `mapstructure:"auto_migrate"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	PoolSize   int           `mapstructure:"pool_size"`
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RabbitMQConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	AuditQueue string `mapstructure:"audit_queue"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
}

type OrdersConfig struct {
	// ClearCartOnCheckout deletes the cart lines once they are snapshotted into an order.
	ClearCartOnCheckout bool `mapstructure:"clear_cart_on_checkout"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// Load reads the YAML file at configPath (optional) and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	bindings := map[string]string{
		"http.port":       "PORT",
		"http.base_url":   "BASE_URL",
		"auth.jwt_secret": "JWT_SECRET",
		"database.driver": "DATABASE_DRIVER",
		"database.dsn":    "DATABASE_DSN",
		"rabbitmq.url":    "RABBITMQ_URL",
		"redis.addr":      "REDIS_ADDR",
		"mongodb.uri":     "MONGO_URI",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.HTTP.BaseURL = normalizeBaseURL(config.HTTP.BaseURL)

	if config.Auth.Enabled && config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth is enabled but JWT_SECRET is empty")
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "shop")
	v.SetDefault("server.host", "127.0.0.1")

	v.SetDefault("http.port", 3000)
	v.SetDefault("http.base_url", "/api")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.name", "shop-catalog")

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.mysql.host", "127.0.0.1")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.username", "root")
	v.SetDefault("database.mysql.database", "shop")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.product_ttl", 10*time.Minute)

	v.SetDefault("mongodb.database", "shop")
	v.SetDefault("mongodb.collection", "audit_logs")

	v.SetDefault("rabbitmq.exchange", "shop.events")
	v.SetDefault("rabbitmq.audit_queue", "shop.audit")

	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
}

func normalizeBaseURL(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

func (c *HTTPConfig) Addr(host string) string {
	return fmt.Sprintf("%s:%d", host, c.Port)
}
