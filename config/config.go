// Package config loads the settings for a test run. Values come from, in increasing order of
// precedence: built-in defaults, a YAML file, a .env file, and the process environment.
//
// The YAML layout mirrors the dotted property names the suite has always used, so
// "user.app-id" is
//
//	user:
//	  app-id: 123
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vkqa/likes-contract-tests/vkapi"
)

// EnvPrefix is prepended to every environment variable name, e.g. LIKES_USER_APP_ID.
const EnvPrefix = "LIKES"

// DefaultEnvFile is loaded if it exists and no other .env file was requested.
const DefaultEnvFile = ".env"

type Config struct {
	User    UserConfig    `yaml:"user"    envconfig:"USER"`
	URI     URIConfig     `yaml:"uri"     envconfig:"URI"`
	API     APIConfig     `yaml:"api"     envconfig:"API"`
	OAuth   OAuthConfig   `yaml:"oauth"   envconfig:"OAUTH"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

type UserConfig struct {
	// AppID is the OAuth application id ("user.app-id").
	AppID int `yaml:"app-id" split_words:"true"`
	// ClientSecret is the application's secret key ("user.client-secret").
	ClientSecret string `yaml:"client-secret" split_words:"true"`
	// Code is the one-time authorization code ("user.code").
	Code string `yaml:"code" split_words:"true"`
}

type URIConfig struct {
	// Redirect must match the redirect URI the code was issued for ("uri.redirect").
	Redirect string `yaml:"redirect" split_words:"true"`
}

type APIConfig struct {
	URL     string        `yaml:"url"     split_words:"true"`
	Version string        `yaml:"version" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`
}

type OAuthConfig struct {
	URL string `yaml:"url" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"  split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// Default returns a Config with every optional setting filled in.
func Default() Config {
	return Config{
		API: APIConfig{
			URL:     vkapi.DefaultBaseURL,
			Version: vkapi.DefaultVersion,
			Timeout: vkapi.DefaultTimeout,
		},
		OAuth: OAuthConfig{
			URL: vkapi.DefaultTokenURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config. An empty path skips the YAML file; an empty envFile means
// DefaultEnvFile if present. A path or envFile that was named explicitly must exist.
//
// Load does not check required settings; that is done by Credentials.Validate so that the
// failure is reported as part of session bootstrap.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("malformed config file %s: %w", path, err)
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Only variables that are actually set override the values above. Leaf fields use
	// split_words rather than envconfig tags, which would also match unprefixed names.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment configuration: %w", err)
	}

	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		envFile = DefaultEnvFile
	}
	// godotenv.Load never overwrites variables that are already set.
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// Credentials are the four settings needed for the authorization-code exchange.
type Credentials struct {
	AppID             int
	ClientSecret      string
	RedirectURI       string
	AuthorizationCode string
}

func (c Config) Credentials() Credentials {
	return Credentials{
		AppID:             c.User.AppID,
		ClientSecret:      c.User.ClientSecret,
		RedirectURI:       c.URI.Redirect,
		AuthorizationCode: c.User.Code,
	}
}

// ValidationError lists required settings that were missing or blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (set them in the config file or as %s_* environment variables)",
		strings.Join(e.Missing, ", "), EnvPrefix)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validate returns a *ValidationError naming every missing setting, in a fixed order.
func (c Credentials) Validate() error {
	var missing []string
	if c.AppID <= 0 {
		missing = append(missing, "user.app-id")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "user.client-secret")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		missing = append(missing, "uri.redirect")
	}
	if strings.TrimSpace(c.AuthorizationCode) == "" {
		missing = append(missing, "user.code")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
