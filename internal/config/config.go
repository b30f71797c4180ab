// config предоставляет структуру конфигурации портала и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
//
// Конфигурация загружается один раз при старте процесса и далее
// передаётся компонентам при конструировании; после загрузки не меняется.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения сервиса.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	// maxLeeway — верхняя граница допуска на расхождение часов.
	maxLeeway     = 30 * time.Second
	defaultLeeway = 5 * time.Second
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Audit     AuditConfig     `yaml:"audit"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — публичный REST-сервер.
type HTTPConfig struct {
	Host     string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:""`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MetricsConfig — отдельный HTTP для /metrics и health-проб.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"8081"`
}

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// AuthConfig содержит параметры выпуска и валидации токенов.
type AuthConfig struct {
	Secret          string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	SignatureSalt   string        `yaml:"signature_salt" env:"AUTH_SIGNATURE_SALT" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Leeway          time.Duration `yaml:"leeway" env:"AUTH_LEEWAY"`
	Issuer          string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"datasource-portal"`
	Audience        []string      `yaml:"audience" env:"AUTH_AUDIENCE" env-default:"datasource-portal"`
	BcryptCost      int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}

// Validate проверяет согласованность параметров токенов.
func (a AuthConfig) Validate() error {
	if a.Secret == "" {
		return errors.New("auth: secret is required")
	}

	if a.SignatureSalt == "" {
		return errors.New("auth: signature_salt is required")
	}

	if a.AccessTokenTTL <= 0 || a.RefreshTokenTTL <= 0 {
		return errors.New("auth: token ttl must be positive")
	}

	if a.RefreshTokenTTL <= a.AccessTokenTTL {
		return errors.New("auth: refresh_token_ttl must be longer than access_token_ttl")
	}

	if a.Leeway < 0 || a.Leeway > maxLeeway {
		return fmt.Errorf("auth: leeway must be within [0, %s]", maxLeeway)
	}

	return nil
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
	Migrate     bool   `yaml:"migrate" env:"DB_MIGRATE"`
}

// RedisConfig — хранилище отозванных токенов.
// Пустой RedisURL допустим только в окружении local: тогда используется
// хранилище в памяти процесса.
type RedisConfig struct {
	RedisURL  string        `yaml:"redis_url" env:"REDIS_URL"`
	KeyPrefix string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"portal:revoked:"`
	OpTimeout time.Duration `yaml:"op_timeout" env:"REDIS_OP_TIMEOUT" env-default:"300ms"`
}

// AuditConfig — журнал событий аутентификации.
type AuditConfig struct {
	Retention     time.Duration `yaml:"retention" env:"AUDIT_RETENTION" env-default:"2160h"`
	JanitorPeriod time.Duration `yaml:"janitor_period" env:"AUDIT_JANITOR_PERIOD" env-default:"1h"`
}

// BootstrapConfig — первичная учётная запись администратора.
// Создаётся при старте, если имя задано и ещё не занято.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"BOOTSTRAP_ADMIN_USERNAME"`
	AdminPassword string `yaml:"admin_password" env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Validate проверяет конфигурацию целиком.
func (c *Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}

	if c.Redis.OpTimeout <= 0 {
		return errors.New("redis: op_timeout must be positive")
	}

	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		return errors.New("bootstrap: admin_username and admin_password must be set together")
	}

	if c.Redis.RedisURL == "" && c.Env != EnvLocal {
		return errors.New("redis: redis_url is required outside local env")
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла поверх значений из YAML накладываются ENV-переменные.
func Load(path string) (*Config, error) {
	cfg := preset()

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return validated(&cfg)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return validated(&cfg)
}

// preset задаёт умолчания для полей, где явный ноль из YAML или ENV
// (migrate: false, leeway: 0s) должен сохраниться; env-default для них не подходит.
func preset() Config {
	return Config{
		Auth: AuthConfig{Leeway: defaultLeeway},
		DB:   DBConfig{Migrate: true},
	}
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
