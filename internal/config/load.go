package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"gridbench/internal/log"
)

// SetDefaults registers Defaults() on v so keys missing from the file and
// environment still resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("ask.url", d.Ask.URL)
	v.SetDefault("ask.timeout", d.Ask.Timeout)
	v.SetDefault("edit.type_to_replace", d.Edit.TypeToReplace)
	v.SetDefault("edit.max_col_width", d.Edit.MaxColWidth)
	v.SetDefault("edit.min_col_width", d.Edit.MinColWidth)
	v.SetDefault("theme.accent", d.Theme.Accent)
	v.SetDefault("theme.danger", d.Theme.Danger)
	v.SetDefault("theme.modified", d.Theme.Modified)
	v.SetDefault("theme.dim", d.Theme.Dim)
}

// Load reads path (or the default location when empty) into a Config.
// A missing file is not an error. Environment variables prefixed with
// GRIDBENCH_ override file values, e.g. GRIDBENCH_ASK_URL.
// It returns the path that saves should go to.
func Load(v *viper.Viper, path string) (Config, string, error) {
	SetDefaults(v)
	v.SetEnvPrefix("GRIDBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return Defaults(), "", err
		}
		path = def
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Defaults(), path, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "no config file, using defaults", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Defaults(), path, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, path, nil
}
