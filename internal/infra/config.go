package infra

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config - корневая структура конфигурации консоли оператора.
type Config struct {
	Remote   RemoteConfig   `mapstructure:"remote"`
	Operator OperatorConfig `mapstructure:"operator"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// RemoteConfig описывает игровой сервер, с которым работает консоль.
// Токен берется из ссылки запуска (?token=...), явные base_url/token её перекрывают.
type RemoteConfig struct {
	LaunchURL string `mapstructure:"launch_url"`
	BaseURL   string `mapstructure:"base_url"`
	Token     string `mapstructure:"token"`
}

// OperatorConfig описывает локальную поверхность оператора (HTTP).
type OperatorConfig struct {
	Addr         string        `mapstructure:"addr"`
	Key          string        `mapstructure:"key"` // пусто - без проверки
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GuardConfig - клиентская защита шлюза. Повторов нет намеренно.
type GuardConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду
	Burst     int     `mapstructure:"burst"`

	// Circuit Breaker выключен по умолчанию
	BreakerEnabled     bool          `mapstructure:"breaker_enabled"`
	BreakerMaxRequests uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval    time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures    uint32        `mapstructure:"breaker_failures"`
}

// RedisConfig описывает канал сигналов между консолями. Пустой addr - сигналы выключены.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	ConsoleID string `mapstructure:"console_id"`
}

// JournalConfig настраивает журнал действий оператора.
type JournalConfig struct {
	DatabaseURL   string        `mapstructure:"database_url"` // пусто - журнал пишется в лог
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig собирает конфигурацию из файла, ENV и флагов командной строки.
// Первый позиционный аргумент трактуется как ссылка запуска консоли.
func LoadConfig(args []string) (*Config, error) {
	v := viper.New()

	// 1. Флаги
	fs := pflag.NewFlagSet("console", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.String("addr", "", "operator surface listen address")
	fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlag("operator.addr", fs.Lookup("addr")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("logger.level", fs.Lookup("log-level")); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		v.Set("remote.launch_url", fs.Arg(0))
	}

	// 2. Поиск файла
	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 3. ENV: REMOTE_TOKEN перекроет remote.token
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("operator.addr", "127.0.0.1:8090")
	v.SetDefault("operator.read_timeout", 5*time.Second)
	v.SetDefault("operator.write_timeout", 0) // запросы к серверу не ограничены по времени
	v.SetDefault("guard.rate_limit", 50.0)
	v.SetDefault("guard.burst", 20)
	v.SetDefault("guard.breaker_max_requests", 1)
	v.SetDefault("guard.breaker_interval", 10*time.Second)
	v.SetDefault("guard.breaker_timeout", 30*time.Second)
	v.SetDefault("guard.breaker_failures", 5)
	v.SetDefault("journal.buffer_size", 1000)
	v.SetDefault("journal.batch_size", 50)
	v.SetDefault("journal.flush_interval", 1*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	// Unmarshal видит ENV только для известных viper ключей
	for _, key := range []string{
		"remote.launch_url", "remote.base_url", "remote.token", "operator.key",
		"redis.addr", "redis.password", "redis.console_id", "journal.database_url",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("guard.breaker_enabled", false)
	v.SetDefault("redis.db", 0)
}

// Endpoint возвращает адрес сервера и токен администратора.
// Отсутствие токена не ошибка: сервер ответит отказом авторизации.
func (r RemoteConfig) Endpoint() (baseURL, token string, err error) {
	if r.LaunchURL != "" {
		u, err := url.Parse(r.LaunchURL)
		if err != nil {
			return "", "", fmt.Errorf("invalid launch url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return "", "", fmt.Errorf("invalid launch url %q: scheme and host are required", r.LaunchURL)
		}
		baseURL = u.Scheme + "://" + u.Host
		token = u.Query().Get("token")
	}

	if r.BaseURL != "" {
		baseURL = strings.TrimRight(r.BaseURL, "/")
	}
	if r.Token != "" {
		token = r.Token
	}

	if baseURL == "" {
		return "", "", errors.New("remote address is not configured: pass a launch url or set remote.base_url")
	}
	return baseURL, token, nil
}
