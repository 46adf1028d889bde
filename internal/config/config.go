// Package config provides configuration types and defaults for gridbench.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gridbench/internal/db"
)

// SavedConnection is a named PostgreSQL target. Either URI or the discrete
// fields are set.
type SavedConnection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     string `mapstructure:"port" yaml:"port,omitempty"`
	User     string `mapstructure:"user" yaml:"user,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	URI      string `mapstructure:"uri" yaml:"uri,omitempty"`
}

// ConnString returns the URI, or one built from the discrete fields.
func (c SavedConnection) ConnString() string {
	if c.URI != "" {
		return c.URI
	}
	return db.Params{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
	}.ConnString()
}

// AskConfig configures the analysis backend.
type AskConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EditConfig holds grid editing options.
type EditConfig struct {
	TypeToReplace bool `mapstructure:"type_to_replace" yaml:"type_to_replace"`
	MaxColWidth   int  `mapstructure:"max_col_width" yaml:"max_col_width"`
	MinColWidth   int  `mapstructure:"min_col_width" yaml:"min_col_width"`
}

// ThemeConfig overrides the default palette with hex colors.
type ThemeConfig struct {
	Accent   string `mapstructure:"accent" yaml:"accent"`
	Danger   string `mapstructure:"danger" yaml:"danger"`
	Modified string `mapstructure:"modified" yaml:"modified"`
	Dim      string `mapstructure:"dim" yaml:"dim"`
}

// Config holds all configuration options for gridbench.
type Config struct {
	Ask         AskConfig         `mapstructure:"ask" yaml:"ask"`
	Edit        EditConfig        `mapstructure:"edit" yaml:"edit"`
	Theme       ThemeConfig       `mapstructure:"theme" yaml:"theme"`
	Connections []SavedConnection `mapstructure:"connections" yaml:"connections,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Ask: AskConfig{
			URL:     "http://127.0.0.1:5000/ask",
			Timeout: 60 * time.Second,
		},
		Edit: EditConfig{
			TypeToReplace: true,
			MaxColWidth:   40,
			MinColWidth:   6,
		},
		Theme: ThemeConfig{
			Accent:   "#4ecca3",
			Danger:   "#e94560",
			Modified: "#f0a500",
			Dim:      "#555555",
		},
	}
}

// DefaultPath returns ~/.config/gridbench/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gridbench", "config.yaml"), nil
}

// Find returns the saved connection with the given name.
func (c *Config) Find(name string) (SavedConnection, bool) {
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return SavedConnection{}, false
}

// Add inserts conn, replacing an existing connection with the same name.
func (c *Config) Add(conn SavedConnection) {
	for i, existing := range c.Connections {
		if existing.Name == conn.Name {
			c.Connections[i] = conn
			return
		}
	}
	c.Connections = append(c.Connections, conn)
}

// Delete removes the connection at index. Out-of-range indexes are ignored.
func (c *Config) Delete(index int) {
	if index < 0 || index >= len(c.Connections) {
		return
	}
	c.Connections = append(c.Connections[:index], c.Connections[index+1:]...)
}

// DeleteByName removes the named connection and reports whether it existed.
func (c *Config) DeleteByName(name string) bool {
	for i, conn := range c.Connections {
		if conn.Name == name {
			c.Delete(i)
			return true
		}
	}
	return false
}
