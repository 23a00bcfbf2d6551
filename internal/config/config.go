package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, loaded from YAML with
// environment overrides applied on top.
type Config struct {
	// DBPath is the sqlite database file.
	DBPath string `yaml:"db_path"`

	// Timezone is the IANA zone used for day boundaries (e.g. "Europe/Berlin").
	// Empty means the process local zone.
	Timezone string `yaml:"timezone"`

	// WeekStart is "sunday" or "monday" and controls the Next view's
	// this-week boundary.
	WeekStart string `yaml:"week_start"`

	// DesktopNotifications enables OS-level alerts for due reminders.
	DesktopNotifications bool `yaml:"desktop_notifications"`

	// SchedulerBuffer bounds the alarm engine's output channel.
	SchedulerBuffer int `yaml:"scheduler_buffer"`

	// BannerTTLSeconds is how long in-app banners stay visible.
	BannerTTLSeconds int `yaml:"banner_ttl_seconds"`

	// MaintenanceCron schedules the daily backfill and archive cleanup run.
	MaintenanceCron string `yaml:"maintenance_cron"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:           defaultDBPath(),
		WeekStart:        "sunday",
		SchedulerBuffer:  64,
		BannerTTLSeconds: 5,
		MaintenanceCron:  "1 0 * * *",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "remindd.db"
	}
	return filepath.Join(home, ".remindd", "remindd.db")
}

// Normalize fills zero values so partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = "sunday"
	}
	if c.SchedulerBuffer <= 0 {
		c.SchedulerBuffer = 64
	}
	if c.BannerTTLSeconds <= 0 {
		c.BannerTTLSeconds = 5
	}
	if c.MaintenanceCron == "" {
		c.MaintenanceCron = "1 0 * * *"
	}
}

func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves the configured timezone, falling back to local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads YAML config from path. A missing file is first run: the default
// config is written there with 0600 perms and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config atomically via temp file + rename, 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".remindd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// FromEnv applies REMINDD_* overrides on top of a loaded config.
func FromEnv(base *Config) *Config {
	cfg := *base
	if v := strings.TrimSpace(os.Getenv("REMINDD_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("REMINDD_TIMEZONE")); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(strings.ToLower(os.Getenv("REMINDD_WEEK_START"))); v != "" {
		cfg.WeekStart = v
	}
	if v, ok := getEnvBool("REMINDD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("REMINDD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvInt("REMINDD_BANNER_TTL"); ok && v > 0 {
		cfg.BannerTTLSeconds = v
	}
	if v := strings.TrimSpace(os.Getenv("REMINDD_MAINTENANCE_CRON")); v != "" {
		cfg.MaintenanceCron = v
	}
	cfg.Normalize()
	return &cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
