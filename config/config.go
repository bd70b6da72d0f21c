package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the player configuration
type Config struct {
	Audio    Audio    `yaml:"audio"`
	Playback Playback `yaml:"playback"`
	Metadata Metadata `yaml:"metadata"`
	UI       UI       `yaml:"ui"`
	Log      Log      `yaml:"log"`
}

// Audio represents settings of the shared output engine
type Audio struct {
	// Rate the speaker is opened at. Sounds with other rates are resampled.
	SampleRate int `yaml:"sample_rate"`
	// Size of the speaker buffer in milliseconds
	BufferMillis int `yaml:"buffer_ms"`
	// Quality passed to beep.Resample
	ResampleQuality int `yaml:"resample_quality"`
}

// Playback represents settings of the song queue
type Playback struct {
	// Fade applied when pausing. Zero pauses immediately.
	FadeMillis *int `yaml:"fade_ms,omitempty"`
	Loop       bool `yaml:"loop"`
}

// Metadata represents settings of the tag reader
type Metadata struct {
	// Refuse files without a readable tag
	RequireTags *bool `yaml:"require_tags,omitempty"`
}

// UI represents settings of the terminal display
type UI struct {
	ShowArt *bool `yaml:"show_art,omitempty"`
}

// Log represents debug log settings
type Log struct {
	File string `yaml:"file"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	fadeMillis := 1
	requireTags := true
	showArt := true
	return &Config{
		Audio: Audio{
			SampleRate:      44100,
			BufferMillis:    100,
			ResampleQuality: 4,
		},
		Playback: Playback{
			FadeMillis: &fadeMillis,
			Loop:       false,
		},
		Metadata: Metadata{RequireTags: &requireTags},
		UI:       UI{ShowArt: &showArt},
		Log:      Log{File: "debug.log"},
	}
}

// DefaultPath returns the path of the config file inside the user config dir
func DefaultPath() string {
	if p := os.Getenv("UMP_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ump.yaml"
	}
	return filepath.Join(dir, "ump", "config.yaml")
}

// Load loads configuration from file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves configuration to file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.BufferMillis == 0 {
		c.Audio.BufferMillis = def.Audio.BufferMillis
	}
	if c.Audio.ResampleQuality == 0 {
		c.Audio.ResampleQuality = def.Audio.ResampleQuality
	}
	if c.Playback.FadeMillis == nil {
		c.Playback.FadeMillis = def.Playback.FadeMillis
	}
	if c.Metadata.RequireTags == nil {
		c.Metadata.RequireTags = def.Metadata.RequireTags
	}
	if c.UI.ShowArt == nil {
		c.UI.ShowArt = def.UI.ShowArt
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
}

// Validate checks that the values can be handed to the audio engine
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid audio.sample_rate: %d", c.Audio.SampleRate)
	}
	if c.Audio.BufferMillis < 1 || c.Audio.BufferMillis > 1000 {
		return fmt.Errorf("invalid audio.buffer_ms: %d (must be 1-1000)", c.Audio.BufferMillis)
	}
	if c.Audio.ResampleQuality < 1 || c.Audio.ResampleQuality > 64 {
		return fmt.Errorf("invalid audio.resample_quality: %d (must be 1-64)", c.Audio.ResampleQuality)
	}
	if c.Playback.FadeMillis != nil && *c.Playback.FadeMillis < 0 {
		return fmt.Errorf("invalid playback.fade_ms: %d", *c.Playback.FadeMillis)
	}
	return nil
}

// Buffer returns the speaker buffer length
func (a Audio) Buffer() time.Duration {
	return time.Duration(a.BufferMillis) * time.Millisecond
}

// Fade returns the fade applied when pausing
func (p Playback) Fade() time.Duration {
	if p.FadeMillis == nil {
		return time.Millisecond
	}
	return time.Duration(*p.FadeMillis) * time.Millisecond
}

// TagsRequired reports whether untagged files are rejected
func (m Metadata) TagsRequired() bool {
	return m.RequireTags == nil || *m.RequireTags
}

// ArtEnabled reports whether cover art is drawn
func (u UI) ArtEnabled() bool {
	return u.ShowArt == nil || *u.ShowArt
}
