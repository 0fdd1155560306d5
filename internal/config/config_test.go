package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Default_is_valid(t *testing.T) {
	//Arrange
	var sut Config

	//Act
	sut.Default()

	//Assert
	assert.Nil(t, sut.Validate())
	assert.Equal(t, "-", sut.Source.Location)
	assert.Equal(t, 30, sut.Cache.PurgeIntervalSec)
	assert.Equal(t, 6, sut.LoadBalancing.ActionIDExpirationSec)
}

func TestConfig_Save_Load(t *testing.T) {
	//Arrange
	fileName := filepath.Join(t.TempDir(), "agent.yaml")
	var cfg Config
	cfg.Default()
	cfg.Base.Resource = "client-a"
	cfg.AutoHandle.Enabled = true
	cfg.Executor.Command = "/usr/local/bin/on-admin-action"

	//Act
	err := cfg.Save(fileName)
	assert.Nil(t, err)

	var sut Config
	err = sut.Load(fileName)

	//Assert
	assert.Nil(t, err)
	assert.Equal(t, cfg, sut)
}

func TestConfig_Load_keeps_defaults_for_missing_values(t *testing.T) {
	//Arrange
	fileName := filepath.Join(t.TempDir(), "agent.yaml")
	err := os.WriteFile(fileName, []byte("base:\n  resource: client-b\n"), 0600)
	assert.Nil(t, err)

	var sut Config

	//Act
	err = sut.Load(fileName)

	//Assert
	assert.Nil(t, err)
	assert.Equal(t, "client-b", sut.Base.Resource)
	assert.Equal(t, "127.0.0.1:8008", sut.HTTP.Addr)
	assert.Equal(t, "json", sut.Logging.Format)
}

func TestConfig_Load_missing_file(t *testing.T) {
	//Arrange
	var sut Config

	//Act
	err := sut.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	//Assert
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestConfig_Load_invalid_yaml(t *testing.T) {
	//Arrange
	fileName := filepath.Join(t.TempDir(), "agent.yaml")
	err := os.WriteFile(fileName, []byte("base: [unclosed"), 0600)
	assert.Nil(t, err)

	var sut Config

	//Act
	err = sut.Load(fileName)

	//Assert
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		message string
	}{
		{"empty resource", func(c *Config) { c.Base.Resource = "" }, "Config.Base.Resource, rule: required"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Config.Logging.Format, rule: oneof"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "Config.Logging.Level, rule: oneof"},
		{"no source", func(c *Config) { c.Source.Location = "" }, "Config.Source.Location, rule: required"},
		{"tls without cert", func(c *Config) { c.HTTP.TLS.Enabled = true }, "Config.HTTP.TLS.CertFile, rule: required_if"},
		{"zero purge interval", func(c *Config) { c.Cache.PurgeIntervalSec = 0 }, "Config.Cache.PurgeIntervalSec, rule: min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sut Config
			sut.Default()
			tt.modify(&sut)

			err := sut.Validate()

			assert.NotNil(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
