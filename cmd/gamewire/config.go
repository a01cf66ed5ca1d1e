package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Zereker/gamewire/catalog"
	"github.com/Zereker/gamewire/play"
)

// Config holds the serve command configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	World   WorldConfig   `mapstructure:"world"   yaml:"world"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
}

// ServerConfig holds the TCP listener and connection settings.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"      yaml:"listen_addr"`
	Heartbeat       time.Duration `mapstructure:"heartbeat"        yaml:"heartbeat"`
	MaxFrameSize    int           `mapstructure:"max_frame_size"   yaml:"max_frame_size"`
	SendBuffer      int           `mapstructure:"send_buffer"      yaml:"send_buffer"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// WorldConfig holds what every player is told when joining.
type WorldConfig struct {
	GameMode     string `mapstructure:"game_mode"     yaml:"game_mode"`
	Dimension    string `mapstructure:"dimension"     yaml:"dimension"`
	Hardcore     bool   `mapstructure:"hardcore"      yaml:"hardcore"`
	MaxPlayers   int32  `mapstructure:"max_players"   yaml:"max_players"`
	ViewDistance int32  `mapstructure:"view_distance" yaml:"view_distance"`
	ReducedDebug bool   `mapstructure:"reduced_debug" yaml:"reduced_debug"`
	Flat         bool   `mapstructure:"flat"          yaml:"flat"`
	OpLevel      int32  `mapstructure:"op_level"      yaml:"op_level"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Path       string `mapstructure:"path"        yaml:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// envPrefix prefixes environment overrides: GAMEWIRE_SERVER_LISTEN_ADDR
// overrides server.listen_addr.
const envPrefix = "GAMEWIRE"

// Load reads configuration from configPath, when set, and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "127.0.0.1:25565")
	v.SetDefault("server.heartbeat", "15s")
	v.SetDefault("server.max_frame_size", 1<<21-1)
	v.SetDefault("server.send_buffer", 64)
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("world.game_mode", string(catalog.Survival))
	v.SetDefault("world.dimension", string(catalog.Overworld))
	v.SetDefault("world.hardcore", false)
	v.SetDefault("world.max_players", 20)
	v.SetDefault("world.view_distance", 10)
	v.SetDefault("world.reduced_debug", false)
	v.SetDefault("world.flat", false)
	v.SetDefault("world.op_level", 0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_addr", "127.0.0.1:9100")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateWorld(); err != nil {
		return err
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log.level %q", c.Log.Level)
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return errors.New("server.listen_addr is required")
	}
	if c.Server.Heartbeat <= 0 {
		return errors.New("server.heartbeat must be positive")
	}
	if c.Server.MaxFrameSize <= 0 {
		return errors.Errorf("server.max_frame_size must be positive, got %d", c.Server.MaxFrameSize)
	}
	if c.Server.SendBuffer <= 0 {
		return errors.Errorf("server.send_buffer must be positive, got %d", c.Server.SendBuffer)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateWorld() error {
	cats := play.DefaultCatalogs()
	if _, ok := cats.GameModes.InternalID(catalog.GameMode(c.World.GameMode)); !ok {
		return errors.Errorf("world.game_mode %q is not a known game mode", c.World.GameMode)
	}
	if _, ok := cats.Dimensions.InternalID(catalog.DimensionType(c.World.Dimension)); !ok {
		return errors.Errorf("world.dimension %q is not a known dimension", c.World.Dimension)
	}
	if c.World.MaxPlayers < 0 {
		return errors.Errorf("world.max_players must not be negative, got %d", c.World.MaxPlayers)
	}
	if c.World.OpLevel < 0 || c.World.OpLevel > play.MaxOpLevel {
		return errors.Errorf("world.op_level must be in [0, %d], got %d", play.MaxOpLevel, c.World.OpLevel)
	}
	return nil
}

// joinGame builds the join game message for a new player.
func (w WorldConfig) joinGame(entityID int32) play.PlayerJoinGame {
	return play.PlayerJoinGame{
		EntityID:       entityID,
		GameMode:       catalog.GameMode(w.GameMode),
		Hardcore:       w.Hardcore,
		Dimension:      catalog.DimensionType(w.Dimension),
		PlayerListSize: w.MaxPlayers,
		LowHorizon:     w.Flat,
		ViewDistance:   w.ViewDistance,
		ReducedDebug:   w.ReducedDebug,
	}
}
