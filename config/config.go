package config

import (
	"encoding/json"
	"errors"
	"os"
	"sync/atomic"

	"github.com/asaskevich/govalidator"
	"github.com/kelseyhightower/envconfig"

	webhooks "github.com/onetakeda/sapio-webhooks"
	"github.com/onetakeda/sapio-webhooks/pkg/log"
)

const DefaultConfigFilePath = "./webhooks.json"

// Environment switches honored by the deployment. The names are fixed by the
// platform's conventions and are matched exactly, case included.
const (
	EnvDebug    = "SapioWebhooksDebug"
	EnvInsecure = "SapioWebhooksInsecure"
)

var cfgSingleton atomic.Value

type HTTPServerConfiguration struct {
	Port uint32 `json:"port"`
}

type ServerConfiguration struct {
	HTTP HTTPServerConfiguration `json:"http"`
}

type ClientConfiguration struct {
	// TimeoutSeconds bounds a single call back into the platform.
	TimeoutSeconds uint64 `json:"timeout_seconds"`

	// InsecureSkipVerify disables TLS certificate verification on the
	// platform client. Deployments against self-signed platform certs set
	// this through SapioWebhooksInsecure.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

type DatabaseConfiguration struct {
	// Dsn is the SQLite path for the invocation log. Empty disables the log.
	Dsn string `json:"dsn"`
}

type LoggerConfiguration struct {
	Level string `json:"level"`
}

type Configuration struct {
	Server   ServerConfiguration   `json:"server"`
	Client   ClientConfiguration   `json:"client"`
	Database DatabaseConfiguration `json:"database"`
	Logger   LoggerConfiguration   `json:"logger"`
	Debug    bool                  `json:"debug"`
}

// environmentOverrides are the generic deployment knobs. The two
// SapioWebhooks* switches are mixed case and read separately.
type environmentOverrides struct {
	Port           uint32 `envconfig:"SAPIO_PORT"`
	DatabaseDsn    string `envconfig:"SAPIO_DB_DSN"`
	LogLevel       string `envconfig:"SAPIO_LOG_LEVEL"`
	TimeoutSeconds uint64 `envconfig:"SAPIO_CLIENT_TIMEOUT_SECONDS"`
}

// Get fetches the application configuration. LoadConfig must have been
// called previously for this to work.
func Get() (Configuration, error) {
	c, ok := cfgSingleton.Load().(*Configuration)
	if !ok {
		return Configuration{}, errors.New("call LoadConfig before this function")
	}

	return *c, nil
}

// Override replaces the stored configuration. Used in tests.
func Override(c *Configuration) {
	cfgSingleton.Store(c)
}

// LoadConfig loads the configuration from the given file path, if present,
// then applies environment overrides. A missing config file is not an error;
// the server must come up from defaults plus environment alone.
func LoadConfig(p string) error {
	c := defaultConfiguration()

	f, err := os.Open(p)
	if err == nil {
		defer f.Close()
		if err = json.NewDecoder(f).Decode(c); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	var o environmentOverrides
	if err = envconfig.Process("", &o); err != nil {
		return err
	}

	if o.Port != 0 {
		c.Server.HTTP.Port = o.Port
	}

	if o.DatabaseDsn != "" {
		c.Database.Dsn = o.DatabaseDsn
	}

	if o.LogLevel != "" {
		c.Logger.Level = o.LogLevel
	}

	if o.TimeoutSeconds != 0 {
		c.Client.TimeoutSeconds = o.TimeoutSeconds
	}

	if IsTruthy(os.Getenv(EnvDebug)) {
		c.Debug = true
		c.Logger.Level = log.DebugLevel.String()
	}

	if IsTruthy(os.Getenv(EnvInsecure)) {
		c.Client.InsecureSkipVerify = true
	}

	if err = c.Validate(); err != nil {
		return err
	}

	cfgSingleton.Store(c)
	return nil
}

func defaultConfiguration() *Configuration {
	return &Configuration{
		Server: ServerConfiguration{
			HTTP: HTTPServerConfiguration{Port: webhooks.DefaultPort},
		},
		Client: ClientConfiguration{
			TimeoutSeconds: uint64(webhooks.DefaultClientTimeout.Seconds()),
		},
		Logger: LoggerConfiguration{Level: log.InfoLevel.String()},
	}
}

func (c *Configuration) Validate() error {
	if c.Server.HTTP.Port == 0 {
		return errors.New("http port cannot be zero")
	}

	if c.Client.TimeoutSeconds == 0 {
		return errors.New("client timeout cannot be zero")
	}

	if _, err := log.ParseLevel(c.Logger.Level); err != nil {
		return err
	}

	return nil
}

// IsTruthy reports whether an environment switch is set to a truthy string.
// Unrecognised values are false, never an error; a bad switch value must not
// prevent startup.
func IsTruthy(s string) bool {
	if s == "" {
		return false
	}

	v, err := govalidator.ToBoolean(s)
	if err != nil {
		return false
	}

	return v
}
