package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the global ~/.wppsim/config.toml.
type Config struct {
	DefaultSession string     `toml:"default_session" validate:"omitempty,max=64"`
	LogLevel       string     `toml:"log_level" validate:"oneof=debug info warn error"`
	Simulation     Simulation `toml:"simulation"`
	Storage        Storage    `toml:"storage"`
	Suggest        Suggest    `toml:"suggest"`
}

// Simulation tunes the simulated peer behaviour. Delays count from the send.
type Simulation struct {
	DeliverAfter     Duration `toml:"deliver_after" validate:"gt=0"`
	ReadAfter        Duration `toml:"read_after" validate:"gt=0"`
	TypingStartAfter Duration `toml:"typing_start_after" validate:"gt=0"`
	TypingStopAfter  Duration `toml:"typing_stop_after" validate:"gt=0"`
	RingAfter        Duration `toml:"ring_after" validate:"gt=0"`
	AutoReplies      []string `toml:"auto_replies" validate:"dive,required"`
}

// Storage selects where state is persisted.
type Storage struct {
	Backend  string `toml:"backend" validate:"oneof=sqlite redis memory"`
	RedisURL string `toml:"redis_url" validate:"required_if=Backend redis"`
}

// Suggest configures the reply suggestion provider. An empty endpoint
// disables it.
type Suggest struct {
	Endpoint  string   `toml:"endpoint" validate:"omitempty,url"`
	Model     string   `toml:"model" validate:"required_with=Endpoint"`
	APIKeyEnv string   `toml:"api_key_env"`
	Timeout   Duration `toml:"timeout" validate:"gte=0"`
}

// APIKey reads the provider key from the configured environment variable.
func (s Suggest) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// Duration is a time.Duration written as "1.5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Simulation: Simulation{
			DeliverAfter:     Duration{time.Second},
			ReadAfter:        Duration{2500 * time.Millisecond},
			TypingStartAfter: Duration{2 * time.Second},
			TypingStopAfter:  Duration{4500 * time.Millisecond},
			RingAfter:        Duration{2 * time.Second},
		},
		Storage: Storage{Backend: "sqlite"},
		Suggest: Suggest{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "WPPSIM_AI_KEY",
			Timeout:   Duration{8 * time.Second},
		},
	}
}

// Load reads config from path on top of the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		return name
	})
	return v
}

// Validate checks field constraints and the ordering of the simulation delays.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	s := c.Simulation
	if s.ReadAfter.Duration < s.DeliverAfter.Duration {
		return fmt.Errorf("invalid config: simulation.read_after must not be earlier than deliver_after")
	}
	if s.TypingStopAfter.Duration <= s.TypingStartAfter.Duration {
		return fmt.Errorf("invalid config: simulation.typing_stop_after must be later than typing_start_after")
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoadEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
