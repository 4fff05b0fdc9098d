// Package config loads settings for the handheld and wrist binaries.
//
// Values come from Default, then the YAML file named by WEAR_CONFIG, then environment
// variables. Callers load .env with godotenv before calling Load.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/dbconfig"
	"github.com/mcdev12/basehaptic/go/internal/models"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Transport names
const (
	TransportNATS      = "nats"
	TransportWebSocket = "websocket"
	TransportLoopback  = "loopback"
)

// Feed names
const (
	FeedScript   = "script"
	FeedPostgres = "postgres"
	FeedNone     = "none"
)

// Store names
const (
	StoreMemory   = "memory"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Transport string          `yaml:"transport"`
	NATS      NATSConfig      `yaml:"nats"`
	Database  dbconfig.Config `yaml:"database"`
	Handheld  HandheldConfig  `yaml:"handheld"`
	Wrist     WristConfig     `yaml:"wrist"`
}

type NATSConfig struct {
	URL             string        `yaml:"url"`
	Stream          string        `yaml:"stream"`
	SubjectPrefix   string        `yaml:"subject_prefix"`
	PresenceSubject string        `yaml:"presence_subject"`
	Consumer        string        `yaml:"consumer"`
	PresenceTimeout time.Duration `yaml:"presence_timeout"`
}

type HandheldConfig struct {
	Port          string        `yaml:"port"`
	MyTeam        string        `yaml:"my_team"`
	Feed          string        `yaml:"feed"`
	NotifyChannel string        `yaml:"notify_channel"`
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
	PutTimeout    time.Duration `yaml:"put_timeout"`
}

type WristConfig struct {
	Port      string        `yaml:"port"`
	NodeID    string        `yaml:"node_id"`
	NodeName  string        `yaml:"node_name"`
	HubURL    string        `yaml:"hub_url"`
	Store     string        `yaml:"store"`
	BoltPath  string        `yaml:"bolt_path"`
	Freshness time.Duration `yaml:"freshness"`
}

// Default returns a configuration that runs both binaries on one machine over NATS.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Transport: TransportNATS,
		NATS: NATSConfig{
			URL:             "nats://localhost:4222",
			Stream:          "WEAR_SYNC",
			SubjectPrefix:   "wearsync.records",
			PresenceSubject: "wearsync.presence",
			Consumer:        "wrist",
			PresenceTimeout: 250 * time.Millisecond,
		},
		Database: dbconfig.Default(),
		Handheld: HandheldConfig{
			Port:          "8090",
			MyTeam:        models.TeamDefault,
			Feed:          FeedScript,
			NotifyChannel: "game_snapshots",
			Workers:       4,
			QueueSize:     64,
			PutTimeout:    5 * time.Second,
		},
		Wrist: WristConfig{
			Port:      "8091",
			NodeName:  "wrist",
			HubURL:    "ws://localhost:8090/ws/wear",
			Store:     StoreBolt,
			BoltPath:  "wear_cache.db",
			Freshness: 5 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file and the environment.
func Load() (Config, error) {
	cfg := Default()
	if path := envOrDefault("WEAR_CONFIG", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = envOrDefault("WEAR_LOG_LEVEL", cfg.LogLevel)
	cfg.Transport = strings.ToLower(envOrDefault("WEAR_TRANSPORT", cfg.Transport))

	cfg.NATS.URL = envOrDefault("NATS_URL", cfg.NATS.URL)
	cfg.NATS.Stream = envOrDefault("WEAR_NATS_STREAM", cfg.NATS.Stream)
	cfg.NATS.Consumer = envOrDefault("WEAR_NATS_CONSUMER", cfg.NATS.Consumer)
	cfg.NATS.PresenceTimeout = durationEnvOrDefault("WEAR_PRESENCE_TIMEOUT", cfg.NATS.PresenceTimeout)

	cfg.Database = dbconfig.ApplyEnv(cfg.Database)

	cfg.Handheld.Port = envOrDefault("HANDHELD_PORT", cfg.Handheld.Port)
	cfg.Handheld.MyTeam = strings.ToUpper(envOrDefault("WEAR_MY_TEAM", cfg.Handheld.MyTeam))
	cfg.Handheld.Feed = strings.ToLower(envOrDefault("WEAR_FEED", cfg.Handheld.Feed))
	cfg.Handheld.Workers = intEnvOrDefault("WEAR_PUBLISH_WORKERS", cfg.Handheld.Workers)
	cfg.Handheld.QueueSize = intEnvOrDefault("WEAR_PUBLISH_QUEUE", cfg.Handheld.QueueSize)

	cfg.Wrist.Port = envOrDefault("WRIST_PORT", cfg.Wrist.Port)
	cfg.Wrist.NodeID = envOrDefault("WEAR_NODE_ID", cfg.Wrist.NodeID)
	cfg.Wrist.NodeName = envOrDefault("WEAR_NODE_NAME", cfg.Wrist.NodeName)
	cfg.Wrist.HubURL = envOrDefault("WEAR_HUB_URL", cfg.Wrist.HubURL)
	cfg.Wrist.Store = strings.ToLower(envOrDefault("WEAR_STORE", cfg.Wrist.Store))
	cfg.Wrist.BoltPath = envOrDefault("WEAR_BOLT_PATH", cfg.Wrist.BoltPath)
	cfg.Wrist.Freshness = durationEnvOrDefault("WEAR_FRESHNESS", cfg.Wrist.Freshness)
}

// Validate rejects unknown backend names.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportNATS, TransportWebSocket, TransportLoopback:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	switch c.Handheld.Feed {
	case FeedScript, FeedPostgres, FeedNone:
	default:
		return fmt.Errorf("unknown feed %q", c.Handheld.Feed)
	}
	switch c.Wrist.Store {
	case StoreMemory, StoreBolt, StorePostgres:
	default:
		return fmt.Errorf("unknown store %q", c.Wrist.Store)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Level returns the configured log level, info when it cannot be parsed.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
