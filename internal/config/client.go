package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultEndpoint          = "http://localhost:8080/v1"
	defaultDatabaseID        = "main"
	defaultNotesCollectionID = "notes"
	defaultHTTPTimeout       = 15
	defaultClientLogFile     = "quicknotes.log"
)

// ClientConfig captures the settings the note client needs to reach the backend.
type ClientConfig struct {
	Endpoint          string
	ProjectID         string
	DatabaseID        string
	NotesCollectionID string
	HTTPTimeout       time.Duration
	LogLevel          string
	LogFile           string
}

// NewClientViper returns a viper instance with client defaults and env bindings configured.
func NewClientViper() *viper.Viper {
	configViper := viper.New()
	ApplyClientDefaults(configViper)
	return configViper
}

// ApplyClientDefaults configures client defaults and env bindings on the provided viper instance.
func ApplyClientDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("endpoint", defaultEndpoint)
	configViper.SetDefault("project.id", defaultProjectID)
	configViper.SetDefault("database.id", defaultDatabaseID)
	configViper.SetDefault("collection.notes", defaultNotesCollectionID)
	configViper.SetDefault("http.timeout_seconds", defaultHTTPTimeout)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.file", defaultClientLogFile)
}

// LoadClient parses client configuration from viper.
func LoadClient(configViper *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		Endpoint:          strings.TrimRight(strings.TrimSpace(configViper.GetString("endpoint")), "/"),
		ProjectID:         configViper.GetString("project.id"),
		DatabaseID:        configViper.GetString("database.id"),
		NotesCollectionID: configViper.GetString("collection.notes"),
		HTTPTimeout:       time.Duration(configViper.GetInt("http.timeout_seconds")) * time.Second,
		LogLevel:          configViper.GetString("log.level"),
		LogFile:           configViper.GetString("log.file"),
	}

	if err := cfg.validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c ClientConfig) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	parsed, err := url.Parse(c.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("endpoint must be an absolute URL, got %q", c.Endpoint)
	}
	if strings.TrimSpace(c.ProjectID) == "" {
		return fmt.Errorf("project.id is required")
	}
	if strings.TrimSpace(c.DatabaseID) == "" {
		return fmt.Errorf("database.id is required")
	}
	if strings.TrimSpace(c.NotesCollectionID) == "" {
		return fmt.Errorf("collection.notes is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout_seconds must be positive")
	}
	return nil
}
