package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Base          Base          `yaml:"base" json:"base"`
	HTTP          HttpSettings  `yaml:"http" json:"http"`
	Logging       Logging       `yaml:"logging" json:"logging"`
	LoadBalancing LoadBalancing `yaml:"loadBalancing" json:"loadBalancing"`
	AutoHandle    AutoHandle    `yaml:"autoHandle" json:"autoHandle"`
	Source        Source        `yaml:"source" json:"source"`
	Executor      Executor      `yaml:"executor" json:"executor"`
	Cache         Cache         `yaml:"cache" json:"cache"`
}

type Base struct {
	// The resource name of this managed client. Actions targeting other resources are ignored.
	// example: client-a
	Resource string `yaml:"resource" json:"resource" validate:"required"`
}

type TLSConfig struct {
	// Enable TLS for the internal HTTP server.
	// example: true
	Enabled bool `yaml:"enabled" json:"enabled"`

	// The cert file to use for the TLS server.
	// example: tls/domain.crt
	CertFile string `yaml:"certFile" json:"certFile" validate:"required_if=Enabled true"`

	// The key file to use for the TLS server.
	// example: tls/domain.key
	KeyFile string `yaml:"keyFile" json:"keyFile" validate:"required_if=Enabled true"`
}

type HttpSettings struct {
	// The address and port the status API runs on.
	// example: 0.0.0.0:8008
	Addr string `yaml:"addr" json:"addr" validate:"required"`

	// The value of the Access-Control-Allow-Origin of the responses of the build in API.
	// example: '*'
	CORSAllowOrigins []string `yaml:"CORSAllowOrigins" json:"CORSAllowOrigins"`

	// Log all incoming requests to the build in API.
	// example: true
	LogAllRequests bool `yaml:"logAllRequests" json:"logAllRequests"`

	TLS TLSConfig `yaml:"TLS" json:"TLS"`
}

type Logging struct {
	// Output format of the log.
	// enum: text,json
	// example: json
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log level to be output.
	// enum: info,warn,error,debug
	// example: debug
	Level string `yaml:"level" json:"level" validate:"oneof=info warn error debug"`

	// Optional log file, rotated when it reaches maxSizeMB.
	// example: /var/log/admin-agent.log
	File string `yaml:"file" json:"file"`

	// example: 10
	MaxSizeMB int `yaml:"maxSizeMB" json:"maxSizeMB" validate:"min=0"`

	// example: 3
	MaxBackups int `yaml:"maxBackups" json:"maxBackups" validate:"min=0"`

	// example: 28
	MaxAgeDays int `yaml:"maxAgeDays" json:"maxAgeDays" validate:"min=0"`
}

type LoadBalancing struct {
	// Enables the load-balancing logic, several agents share the same actions.
	// example: true
	Enable bool `yaml:"enable" json:"enable"`

	// The on lock timeout in milliseconds.
	// example: 300
	OnLockErrorTimeOutMs int `yaml:"onLockErrorTimeoutMs" json:"onLockErrorTimeoutMs" validate:"min=0"`

	// The expiration of the handled actionID marker in Redis in seconds.
	// example: 6
	ActionIDExpirationSec int         `yaml:"actionIDExpirationSec" json:"actionIDExpirationSec" validate:"min=1"`
	RedisConfig           RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig is the redis configuration when LoadBalancing is enabled
type RedisConfig struct {
	// The Redis host.
	// example: redis
	Host string `yaml:"host" json:"host"`

	// The Redis port.
	// example: 6379
	Port int `yaml:"port" json:"port"`

	// The Redis password.
	// example: just a password
	Password string `yaml:"password" json:"-"`

	// Redis database to be selected after connecting to the server.
	// example: 0
	DB int `yaml:"db" json:"db"`
}

type AutoHandle struct {
	// Execute every valid action as soon as it is received.
	// example: true
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type Source struct {
	// The stream the actions are read from, one JSON action per line. `-` reads stdin.
	// example: /run/admin-agent/actions.fifo
	Location string `yaml:"location" json:"location" validate:"required"`
}

type Executor struct {
	// Command run for every handled action, the action JSON is written to its stdin.
	// When empty the action is only logged.
	// example: /usr/local/bin/on-admin-action
	Command string `yaml:"command" json:"command"`

	// Extra arguments passed to the command.
	Args []string `yaml:"args,omitempty" json:"args"`

	// The command timeout in seconds.
	// example: 30
	TimeoutSec int `yaml:"timeoutSec" json:"timeoutSec" validate:"min=1"`
}

type Cache struct {
	// Interval in seconds between sweeps of expired pending actions.
	// example: 30
	PurgeIntervalSec int `yaml:"purgeIntervalSec" json:"purgeIntervalSec" validate:"min=1"`
}

// Default creates configuration with default values.
func (c *Config) Default() {
	c.HTTP = HttpSettings{
		Addr:             "127.0.0.1:8008",
		CORSAllowOrigins: []string{"*"},
		TLS: TLSConfig{
			Enabled: false,
		},
	}

	c.Base.Resource = "client"
	c.Logging = Logging{
		Level:      "info",
		Format:     "json",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	c.LoadBalancing = LoadBalancing{
		Enable:                false,
		OnLockErrorTimeOutMs:  300,
		ActionIDExpirationSec: 6,
		RedisConfig: RedisConfig{
			Host:     "redis",
			Port:     6379,
			Password: "",
			DB:       0,
		},
	}
	c.AutoHandle.Enabled = false
	c.Source.Location = "-"
	c.Executor = Executor{
		TimeoutSec: 30,
	}
	c.Cache.PurgeIntervalSec = 30
}

// Load reads and parses yaml config.
func (c *Config) Load(fileName string) error {
	f, err := os.ReadFile(fileName)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	c.Default()
	if err := yaml.Unmarshal(f, c); err != nil {
		return errors.Wrap(err, "parse config file")
	}

	return nil
}

// Save saves yaml config.
func (c *Config) Save(fileName string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(fileName, b, 0600)
}

// Validate checks the loaded values, the first failing field is reported
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return errors.Errorf("invalid config value for %s, rule: %s", vErrs[0].Namespace(), vErrs[0].Tag())
		}

		return errors.Wrap(err, "validate config")
	}

	return nil
}
