// Package config loads gateway configuration from layered sources
// (files, environment) and unmarshals sections into package configs.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges configuration sources and exposes typed access via viper.
type Loader struct {
	sources []Source
	merged  map[string]interface{}
	v       *viper.Viper
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		merged: make(map[string]interface{}),
		v:      viper.New(),
	}
}

// AddSource registers a source. Call Load afterwards.
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// Load reads every source in priority order (low to high) and merges the
// flat key maps into one view.
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.merged = make(map[string]interface{})
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		for key, value := range data {
			l.merged[key] = value
		}
	}

	l.v = viper.New()
	for key, value := range l.merged {
		l.v.Set(key, value)
	}
	return nil
}

// Unmarshal decodes the subtree under key into out (mapstructure tags).
func (l *Loader) Unmarshal(key string, out interface{}) error {
	if !l.v.IsSet(key) {
		return fmt.Errorf("config section %q not found", key)
	}
	if err := l.v.UnmarshalKey(key, out); err != nil {
		return fmt.Errorf("unmarshal config section %q: %w", key, err)
	}
	return nil
}

// GetString returns a single string value ("" when unset).
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// IsSet reports whether the key exists in the merged view.
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// Keys returns all merged flat keys, sorted, optionally filtered by prefix.
func (l *Loader) Keys(prefix string) []string {
	keys := make([]string, 0, len(l.merged))
	for key := range l.merged {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
