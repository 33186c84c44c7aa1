package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// SecretKey is the HS256 secret shared with the upstream API.
var SecretKey []byte

type SessionPolicy string

const (
	// PolicyServer re-validates every rehydrated token against getUser.
	PolicyServer SessionPolicy = "server"
	// PolicyClaims trusts the decoded token claims as the session.
	PolicyClaims SessionPolicy = "claims"
)

type Config struct {
	SecretKey           []byte
	GraphQLURL          string
	Port                string
	PollInterval        time.Duration
	KitchenPollInterval time.Duration
	TicketClockInterval time.Duration
	LateAfterMinutes    int
	SessionPolicy       SessionPolicy
	SessionRevalidate   time.Duration
	CookieSecure        bool
	CORSOrigins         []string
	RabbitMQURL         string
	LogLevel            string
	LogFormat           string
}

// Init loads .env and the environment into the package config, exiting on error.
func Init() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}

	cfg, err := Load(os.Getenv)
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	SecretKey = cfg.SecretKey
	return cfg
}

// Load builds a Config from getenv. Every invalid entry is reported, not only the first.
func Load(getenv func(string) string) (*Config, error) {
	var errs *multierror.Error

	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(get(key, def))
		if err != nil || d <= 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s: invalid duration %q", key, get(key, def)))
			return 0
		}
		return d
	}

	cfg := &Config{
		GraphQLURL:          get("GRAPHQL_URL", "http://localhost:4000/graphql"),
		Port:                get("PORT", "8080"),
		PollInterval:        duration("POLL_INTERVAL", "5s"),
		KitchenPollInterval: duration("KITCHEN_POLL_INTERVAL", "3s"),
		TicketClockInterval: duration("TICKET_CLOCK_INTERVAL", "1m"),
		SessionRevalidate:   duration("SESSION_REVALIDATE", "30s"),
		RabbitMQURL:         get("RABBITMQ_URL", ""),
		LogLevel:            get("LOG_LEVEL", "info"),
		LogFormat:           get("LOG_FORMAT", "text"),
	}

	secret := getenv("JWT_SECRET_KEY")
	if secret == "" {
		errs = multierror.Append(errs, fmt.Errorf("JWT_SECRET_KEY not set"))
	}
	cfg.SecretKey = []byte(secret)

	late, err := strconv.Atoi(get("LATE_AFTER_MINUTES", "15"))
	if err != nil || late < 0 {
		errs = multierror.Append(errs, fmt.Errorf("LATE_AFTER_MINUTES: invalid value %q", get("LATE_AFTER_MINUTES", "15")))
	}
	cfg.LateAfterMinutes = late

	switch policy := SessionPolicy(strings.ToLower(get("SESSION_POLICY", string(PolicyServer)))); policy {
	case PolicyServer, PolicyClaims:
		cfg.SessionPolicy = policy
	default:
		errs = multierror.Append(errs, fmt.Errorf("SESSION_POLICY: must be %q or %q", PolicyServer, PolicyClaims))
	}

	secure, err := strconv.ParseBool(get("COOKIE_SECURE", "false"))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("COOKIE_SECURE: invalid bool %q", get("COOKIE_SECURE", "false")))
	}
	cfg.CookieSecure = secure

	for _, origin := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogging applies the configured level and format to the standard logrus logger.
func (c *Config) SetupLogging() {
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
