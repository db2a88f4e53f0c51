package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
		// TrustedProxies are the proxy addresses allowed to set X-Forwarded-For.
		TrustedProxies []string `mapstructure:"trusted_proxies"`
	} `mapstructure:"app"`
	DB struct {
		Driver         string `mapstructure:"driver"`
		DSN            string `mapstructure:"dsn"`
		AutoMigrate    bool   `mapstructure:"auto_migrate"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	RateLimit struct {
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Security struct {
		HashPasswords bool `mapstructure:"hash_passwords"`
	} `mapstructure:"security"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads .env and config.yaml from each of paths (the working
// directory when none are given) and lets environment variables override them.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	v := viper.New()

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, filepath.Join(p, ".env"))
		v.AddConfigPath(p)
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, using env and defaults. Error: %v", err)
	}

	v.SetDefault("app.name", "sencity-user-service")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("db.migrations_path", "file://migrations")
	v.SetDefault("kafka.topic", "user.events")
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("security.hash_passwords", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.trusted_proxies", "APP_TRUSTED_PROXIES")
	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.auto_migrate", "DB_AUTO_MIGRATE")
	v.BindEnv("db.migrations_path", "DB_MIGRATIONS_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.hash_passwords", "HASH_PASSWORDS")
	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	err = v.Unmarshal(&cfg)
	return
}
