package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Ledger and registry
	AdminAddress     string
	BuilderWhitelist []string
	FeeBps           int
	FeeWallet        string
	EscrowAccount    string

	MaxDurationDays int
	EventStream     string
	EventStreamMax  int64

	LogDebug bool
}

var defaults = map[string]any{
	"APP_PORT":                "8080",
	"MYSQL_HOST":              "mysql",
	"MYSQL_PORT":              "3306",
	"MYSQL_DB":                "tokenestate",
	"MYSQL_USER":              "tokenestate",
	"MYSQL_PASS":              "tokenestate",
	"REDIS_ADDR":              "redis:6379",
	"REDIS_DB":                0,
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"FEE_BPS":                 0,
	"ESCROW_ACCOUNT":          "escrow",
	"MAX_DURATION_DAYS":       365,
	"EVENT_STREAM":            "tokenestate:events",
	"EVENT_STREAM_MAXLEN":     100000,
	"LOG_DEBUG":               false,
}

// Load reads an optional .env file in the working directory, then the
// environment. Environment values win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	return &Config{
		AppPort:   v.GetString("APP_PORT"),
		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		AdminAddress:     strings.TrimSpace(v.GetString("ADMIN_ADDRESS")),
		BuilderWhitelist: splitList(v.GetString("BUILDER_WHITELIST")),
		FeeBps:           v.GetInt("FEE_BPS"),
		FeeWallet:        strings.TrimSpace(v.GetString("FEE_WALLET")),
		EscrowAccount:    strings.TrimSpace(v.GetString("ESCROW_ACCOUNT")),

		MaxDurationDays: v.GetInt("MAX_DURATION_DAYS"),
		EventStream:     v.GetString("EVENT_STREAM"),
		EventStreamMax:  v.GetInt64("EVENT_STREAM_MAXLEN"),

		LogDebug: v.GetBool("LOG_DEBUG"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.AdminAddress == "" {
		return errors.New("missing ADMIN_ADDRESS")
	}
	if c.FeeBps < 0 || c.FeeBps > 10_000 {
		return fmt.Errorf("FEE_BPS must be within 0..10000, got %d", c.FeeBps)
	}
	if c.FeeBps > 0 && c.FeeWallet == "" {
		return errors.New("FEE_WALLET is required when FEE_BPS > 0")
	}
	if c.EscrowAccount == "" {
		return errors.New("missing ESCROW_ACCOUNT")
	}
	if c.EscrowAccount == c.AdminAddress || (c.FeeWallet != "" && c.EscrowAccount == c.FeeWallet) {
		return errors.New("ESCROW_ACCOUNT must differ from ADMIN_ADDRESS and FEE_WALLET")
	}
	// escrow never acts as a builder
	if slices.Contains(c.BuilderWhitelist, c.EscrowAccount) {
		return errors.New("ESCROW_ACCOUNT must not appear in BUILDER_WHITELIST")
	}
	if c.MaxDurationDays <= 0 {
		return fmt.Errorf("MAX_DURATION_DAYS must be positive, got %d", c.MaxDurationDays)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
