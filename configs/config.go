package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Cache struct {
		StatusTTL  time.Duration `koanf:"status_ttl"`
		ProductTTL time.Duration `koanf:"product_ttl"`
	} `koanf:"cache"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers             []string `koanf:"brokers"`
		PaymentResultsTopic string   `koanf:"payment_results_topic"`
		GroupID             string   `koanf:"group_id"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	// Lifecycle lets operations tune which order status transitions are
	// sanctioned without a code change.
	Lifecycle struct {
		Transitions map[string][]string `koanf:"transitions"`
	} `koanf:"lifecycle"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env overlay (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix ECOM_, nested with __)
	// e.g. ECOM_MYSQL__DSN, ECOM_REDIS__PASSWORD
	if err := k.Load(env.Provider("ECOM_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ECOM_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required")
	}
	for from, tos := range c.Lifecycle.Transitions {
		if !domain.Status(from).Valid() {
			return fmt.Errorf("lifecycle.transitions: unknown status %q", from)
		}
		for _, to := range tos {
			if !domain.Status(to).Valid() {
				return fmt.Errorf("lifecycle.transitions[%s]: unknown status %q", from, to)
			}
		}
	}
	return nil
}

// TransitionTable converts the configured lifecycle graph, falling back to
// the built-in default when the config file does not set one.
func (c Config) TransitionTable() domain.TransitionTable {
	if len(c.Lifecycle.Transitions) == 0 {
		return domain.DefaultTransitions
	}
	table := make(domain.TransitionTable, len(c.Lifecycle.Transitions))
	for from, tos := range c.Lifecycle.Transitions {
		out := make([]domain.Status, 0, len(tos))
		for _, to := range tos {
			out = append(out, domain.Status(to))
		}
		table[domain.Status(from)] = out
	}
	return table
}
