/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user preferences of pagecomposer from a YAML file
// in the user scope. Environment variables are read-only overrides applied at
// runtime and never written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/editor"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/vector"
)

// AppConfig is the user-editable configuration persisted to config.yaml.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on load.

type GeneralConfig struct {
	Language   string  `yaml:"language"`
	FontFamily string  `yaml:"font_family"`
	FontSize   float64 `yaml:"font_size"`
	// RecentLimit caps the recent-documents list.
	RecentLimit      int           `yaml:"recent_limit"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
}

type MarginsConfig struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
}

type PageConfig struct {
	// Size is a preset name (A4, A5, Letter, Legal); Width and Height win when set.
	Size       string        `yaml:"size"`
	Landscape  bool          `yaml:"landscape"`
	Width      float64       `yaml:"width,omitempty"`
	Height     float64       `yaml:"height,omitempty"`
	Margins    MarginsConfig `yaml:"margins"`
	Background string        `yaml:"background"`
	BodyText   bool          `yaml:"body_text"`
}

type EditorConfig struct {
	UndoDepth       int           `yaml:"undo_depth"`
	UndoMaxMB       int           `yaml:"undo_max_mb"`
	TypingMerge     time.Duration `yaml:"typing_merge"`
	Snap            bool          `yaml:"snap"`
	SnapDistance    float64       `yaml:"snap_distance"`
	DuplicateOffset float64       `yaml:"duplicate_offset"`
	// PolygonSides is the polygon tool preset; 0 draws a five-point star.
	PolygonSides int `yaml:"polygon_sides"`
}

type ExportConfig struct {
	Preset string  `yaml:"preset"` // "web" | "print"
	DPI    float64 `yaml:"dpi,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Page          PageConfig    `yaml:"page"`
	Editor        EditorConfig  `yaml:"editor"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General: GeneralConfig{
			Language: "en", FontFamily: domain.DefaultFont, FontSize: domain.DefaultFontSize,
			RecentLimit: 10, AutosaveInterval: 2 * time.Minute,
		},
		Page: PageConfig{
			Size:       "A4",
			Margins:    MarginsConfig{Left: 50, Top: 50, Right: 50, Bottom: 50},
			Background: vector.White.Hex(),
			BodyText:   true,
		},
		Editor: EditorConfig{
			UndoDepth: 50, UndoMaxMB: 64, TypingMerge: time.Second,
			Snap: true, SnapDistance: 10, DuplicateOffset: 20, PolygonSides: 3,
		},
		Export:  ExportConfig{Preset: "web"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "PGC_CONFIG"
	EnvFontFamily   = "PGC_FONT_FAMILY"
	EnvRecentLimit  = "PGC_RECENT_LIMIT"
	EnvPageSize     = "PGC_PAGE_SIZE"
	EnvUndoDepth    = "PGC_UNDO_DEPTH"
	EnvSnap         = "PGC_SNAP"
	EnvPolygonSides = "PGC_POLYGON_SIDES"
	EnvExportPreset = "PGC_EXPORT_PRESET"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PGC_LOG_LEVEL"
	EnvLogFormat = "PGC_LOG_FORMAT"
	EnvLogSource = "PGC_LOG_SOURCE"
	EnvLogFile   = "PGC_LOG_FILE"
)

// ConfigPath returns the per-user config file path. PGC_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageComposer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageComposer")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "pagecomposer")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "pagecomposer")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults and merges
// environment overrides. A file that does not parse is reported and the
// defaults are used.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// mergeInto copies the file values that are usable. src was decoded over the
// defaults, so booleans absent from the file keep their default.
func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// general
	if s := strings.TrimSpace(src.General.Language); s != "" {
		dst.General.Language = s
	}
	if s := strings.TrimSpace(src.General.FontFamily); s != "" {
		dst.General.FontFamily = s
	}
	if src.General.FontSize > 0 {
		dst.General.FontSize = src.General.FontSize
	}
	if src.General.RecentLimit > 0 {
		dst.General.RecentLimit = src.General.RecentLimit
	}
	if src.General.AutosaveInterval >= 0 {
		dst.General.AutosaveInterval = src.General.AutosaveInterval
	}
	// page
	if _, ok := domain.DefaultPageSettings().WithPageSize(src.Page.Size, false); ok {
		dst.Page.Size = src.Page.Size
	}
	dst.Page.Landscape = src.Page.Landscape
	if src.Page.Width > 0 && src.Page.Height > 0 {
		dst.Page.Width, dst.Page.Height = src.Page.Width, src.Page.Height
	}
	m := src.Page.Margins
	if m.Left >= 0 && m.Top >= 0 && m.Right >= 0 && m.Bottom >= 0 {
		dst.Page.Margins = m
	}
	if _, err := vector.ParseColor(src.Page.Background); err == nil {
		dst.Page.Background = src.Page.Background
	}
	dst.Page.BodyText = src.Page.BodyText
	// editor
	if src.Editor.UndoDepth > 0 {
		dst.Editor.UndoDepth = src.Editor.UndoDepth
	}
	if src.Editor.UndoMaxMB > 0 {
		dst.Editor.UndoMaxMB = src.Editor.UndoMaxMB
	}
	if src.Editor.TypingMerge >= 0 {
		dst.Editor.TypingMerge = src.Editor.TypingMerge
	}
	dst.Editor.Snap = src.Editor.Snap
	if src.Editor.SnapDistance > 0 {
		dst.Editor.SnapDistance = src.Editor.SnapDistance
	}
	if src.Editor.DuplicateOffset > 0 {
		dst.Editor.DuplicateOffset = src.Editor.DuplicateOffset
	}
	if src.Editor.PolygonSides == 0 || src.Editor.PolygonSides >= 3 {
		dst.Editor.PolygonSides = src.Editor.PolygonSides
	}
	// export
	if s := strings.ToLower(strings.TrimSpace(src.Export.Preset)); s == "web" || s == "print" {
		dst.Export.Preset = s
	}
	if src.Export.DPI > 0 {
		dst.Export.DPI = src.Export.DPI
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFontFamily)); v != "" {
		cfg.General.FontFamily = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRecentLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.RecentLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		if _, ok := domain.DefaultPageSettings().WithPageSize(v, false); ok {
			cfg.Page.Size = v
			cfg.Page.Width, cfg.Page.Height = 0, 0
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvUndoDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.UndoDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnap)); v != "" {
		cfg.Editor.Snap = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPolygonSides)); v != "" {
		if strings.EqualFold(v, "star") {
			cfg.Editor.PolygonSides = 0
		} else if n, err := strconv.Atoi(v); err == nil && n >= 3 {
			cfg.Editor.PolygonSides = n
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvExportPreset))); v == "web" || v == "print" {
		cfg.Export.Preset = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"general.font_family":  EnvFontFamily,
		"general.recent_limit": EnvRecentLimit,
		"page.size":            EnvPageSize,
		"editor.undo_depth":    EnvUndoDepth,
		"editor.snap":          EnvSnap,
		"editor.polygon_sides": EnvPolygonSides,
		"export.preset":        EnvExportPreset,
		"logging.level":        EnvLogLevel,
		"logging.format":       EnvLogFormat,
		"logging.source":       EnvLogSource,
		"logging.file":         EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// PageSettings builds the settings new documents and pages start from.
func (c AppConfig) PageSettings() domain.PageSettings {
	s := domain.DefaultPageSettings()
	if sized, ok := s.WithPageSize(c.Page.Size, c.Page.Landscape); ok {
		s = sized
	}
	if c.Page.Width > 0 && c.Page.Height > 0 {
		s.Width, s.Height = c.Page.Width, c.Page.Height
	}
	m := c.Page.Margins
	s.Margins = domain.Margins{Left: m.Left, Top: m.Top, Right: m.Right, Bottom: m.Bottom}
	if bg, err := vector.ParseColor(c.Page.Background); err == nil {
		s.Background = bg
	}
	if c.General.FontFamily != "" {
		s.Font = c.General.FontFamily
	}
	if c.General.FontSize > 0 {
		s.FontSize = c.General.FontSize
	}
	s.BodyText = c.Page.BodyText
	return s
}

// EditorConfig builds the session preferences.
func (c AppConfig) EditorConfig() editor.Config {
	ec := editor.DefaultConfig()
	ec.Page = c.PageSettings()
	ec.UndoDepth = c.Editor.UndoDepth
	ec.UndoMaxBytes = c.Editor.UndoMaxMB * 1024 * 1024
	ec.TypingMerge = c.Editor.TypingMerge
	ec.Snap = c.Editor.Snap
	ec.SnapDistance = c.Editor.SnapDistance
	ec.DuplicateOffset = c.Editor.DuplicateOffset
	ec.PolygonSides = c.Editor.PolygonSides
	return ec
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{Level: c.Logging.Level, Format: c.Logging.Format, AddSource: c.Logging.Source, File: c.Logging.File}
}
