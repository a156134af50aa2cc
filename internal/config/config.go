package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path" default:"data/jobs.db"`
	} `yaml:"database"`

	Stripe struct {
		SecretKey     string        `yaml:"secret_key"`
		WebhookSecret string        `yaml:"webhook_secret"`
		SuccessURL    string        `yaml:"success_url" default:"http://localhost:3000/payment-success?session_id={CHECKOUT_SESSION_ID}"`
		CancelURL     string        `yaml:"cancel_url" default:"http://localhost:3000/post-job"`
		Currency      string        `yaml:"currency" default:"usd"`
		Timeout       time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"stripe"`

	Pricing struct {
		StandardCents  int64 `yaml:"standard_cents" default:"1999"`
		PremiumCents   int64 `yaml:"premium_cents" default:"2999"`
		GoldCents      int64 `yaml:"gold_cents" default:"4999"`
		DiamondCents   int64 `yaml:"diamond_cents" default:"9999"`
		DurationMonths int   `yaml:"duration_months" default:"1"`
		FreeExpiryDays int   `yaml:"free_expiry_days" default:"30"`
	} `yaml:"pricing"`

	RateLimit struct {
		SubmissionsPerMinute int `yaml:"submissions_per_minute" default:"10"`
		Burst                int `yaml:"burst" default:"5"`
	} `yaml:"rate_limit"`

	Maintenance struct {
		SweepInterval      time.Duration `yaml:"sweep_interval" default:"1h"`
		WebhookEventMaxAge time.Duration `yaml:"webhook_event_max_age" default:"720h"`
	} `yaml:"maintenance"`

	Notify struct {
		Endpoint   string        `yaml:"endpoint"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
		Enabled    bool          `yaml:"enabled" default:"false"`
	} `yaml:"notify"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Database.Path = "data/jobs.db"

	config.Stripe.SuccessURL = "http://localhost:3000/payment-success?session_id={CHECKOUT_SESSION_ID}"
	config.Stripe.CancelURL = "http://localhost:3000/post-job"
	config.Stripe.Currency = "usd"
	config.Stripe.Timeout = 30 * time.Second

	config.Pricing.StandardCents = 1999
	config.Pricing.PremiumCents = 2999
	config.Pricing.GoldCents = 4999
	config.Pricing.DiamondCents = 9999
	config.Pricing.DurationMonths = 1
	config.Pricing.FreeExpiryDays = 30

	config.RateLimit.SubmissionsPerMinute = 10
	config.RateLimit.Burst = 5

	config.Maintenance.SweepInterval = 1 * time.Hour
	config.Maintenance.WebhookEventMaxAge = 30 * 24 * time.Hour

	config.Notify.Timeout = 30 * time.Second
	config.Notify.MaxRetries = 3
	config.Notify.Enabled = false

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}

	if secretKey := os.Getenv("STRIPE_SECRET_KEY"); secretKey != "" {
		c.Stripe.SecretKey = secretKey
	}

	if webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET"); webhookSecret != "" {
		c.Stripe.WebhookSecret = webhookSecret
	}

	if successURL := os.Getenv("STRIPE_SUCCESS_URL"); successURL != "" {
		c.Stripe.SuccessURL = successURL
	}

	if cancelURL := os.Getenv("STRIPE_CANCEL_URL"); cancelURL != "" {
		c.Stripe.CancelURL = cancelURL
	}

	if currency := os.Getenv("STRIPE_CURRENCY"); currency != "" {
		c.Stripe.Currency = currency
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if endpoint := os.Getenv("NOTIFY_ENDPOINT"); endpoint != "" {
		c.Notify.Endpoint = endpoint
	}

	if notifyTimeout := os.Getenv("NOTIFY_TIMEOUT"); notifyTimeout != "" {
		if timeout, err := time.ParseDuration(notifyTimeout); err == nil {
			c.Notify.Timeout = timeout
		}
	}

	if notifyRetries := os.Getenv("NOTIFY_MAX_RETRIES"); notifyRetries != "" {
		if retries, err := strconv.Atoi(notifyRetries); err == nil {
			c.Notify.MaxRetries = retries
		}
	}

	if notifyEnabled := os.Getenv("NOTIFY_ENABLED"); notifyEnabled != "" {
		c.Notify.Enabled = notifyEnabled == "true" || notifyEnabled == "1"
	}

	if sweepInterval := os.Getenv("MAINTENANCE_SWEEP_INTERVAL"); sweepInterval != "" {
		if interval, err := time.ParseDuration(sweepInterval); err == nil {
			c.Maintenance.SweepInterval = interval
		}
	}

	if rateLimit := os.Getenv("SUBMISSION_RATE_LIMIT"); rateLimit != "" {
		if limit, err := strconv.Atoi(rateLimit); err == nil {
			c.RateLimit.SubmissionsPerMinute = limit
		}
	}
}
