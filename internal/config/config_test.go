package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func valid() *Config {
	return &Config{
		AppPort: "8080", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "te", MySQLUser: "u",
		AdminAddress: "GADMIN", EscrowAccount: "GESCROW", FeeBps: 250, FeeWallet: "GFEE",
		MaxDurationDays: 365, IdempTTLSecs: 300,
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ADMIN_ADDRESS", " GADMIN ")
	t.Setenv("BUILDER_WHITELIST", "GB1, ,GB2 ")
	t.Setenv("FEE_BPS", "250")
	t.Setenv("FEE_WALLET", "GFEE")
	t.Setenv("LOG_DEBUG", "true")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "GADMIN", c.AdminAddress)
	assert.Equal(t, []string{"GB1", "GB2"}, c.BuilderWhitelist)
	assert.Equal(t, 250, c.FeeBps)
	assert.Equal(t, 365, c.MaxDurationDays)
	assert.Equal(t, 300*time.Second, c.IdempotencyTTL())
	assert.True(t, c.LogDebug)
	assert.NoError(t, c.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_ADDRESS=GFROMFILE\nAPP_PORT=9090\n"), 0o600))
	chdir(t, dir)
	t.Setenv("APP_PORT", "7070")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "GFROMFILE", c.AdminAddress)
	assert.Equal(t, "7070", c.AppPort, "environment wins over .env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero fee without wallet", func(c *Config) { c.FeeBps = 0; c.FeeWallet = "" }, true},
		{"missing mysql host", func(c *Config) { c.MySQLHost = "" }, false},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "not-a-port" }, false},
		{"missing admin", func(c *Config) { c.AdminAddress = "" }, false},
		{"fee above 100%", func(c *Config) { c.FeeBps = 10_001 }, false},
		{"negative fee", func(c *Config) { c.FeeBps = -1 }, false},
		{"fee without wallet", func(c *Config) { c.FeeWallet = "" }, false},
		{"escrow is fee wallet", func(c *Config) { c.EscrowAccount = "GFEE" }, false},
		{"escrow whitelisted", func(c *Config) { c.BuilderWhitelist = []string{"GBUILDER", "GESCROW"} }, false},
		{"whitelist without escrow", func(c *Config) { c.BuilderWhitelist = []string{"GBUILDER"} }, true},
		{"zero duration cap", func(c *Config) { c.MaxDurationDays = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := valid()
	c.MySQLPass = "p"
	assert.Equal(t, "u:p@tcp(db:3306)/te?parseTime=true&charset=utf8mb4", c.MySQLDSN())
}
