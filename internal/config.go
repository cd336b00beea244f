// Package internal wires configuration and the serve runtime together.
package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/zettelport/internal/converter"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Markers MarkersConfig     `yaml:"markers"`
	Convert ConvertConfig     `yaml:"convert"`
	Index   IndexConfig       `yaml:"index"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Markers.Validate(); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// MarkersConfig holds the delimiter tokens separating titles from bodies in
// the input document.
type MarkersConfig struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Validate validates the marker configuration. The two tokens must differ,
// otherwise every block boundary would also read as a content boundary.
func (c *MarkersConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Content, validation.Required),
	); err != nil {
		return err
	}
	if c.Title == c.Content {
		return fmt.Errorf("markers: title and content tokens must differ (both %q)", c.Title)
	}
	return nil
}

// ConvertConfig holds conversion behavior options.
type ConvertConfig struct {
	OnCollision string `yaml:"on_collision"`
}

// Validate validates the conversion configuration, defaulting an empty
// collision policy to "overwrite".
func (c *ConvertConfig) Validate() error {
	if c.OnCollision == "" {
		c.OnCollision = converter.CollisionOverwrite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.OnCollision, validation.Required,
			validation.In(converter.CollisionOverwrite, converter.CollisionFail)),
	)
}

// IndexConfig holds the SQLite index location. An empty path disables
// indexing for convert/watch; serve and mcp require it.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether an index path is configured.
func (c *IndexConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds preview API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Markers: MarkersConfig{
			Title:   "**Title:**",
			Content: "**Content:**",
		},
		Convert: ConvertConfig{
			OnCollision: converter.CollisionOverwrite,
		},
		Index: IndexConfig{
			Path: "",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
