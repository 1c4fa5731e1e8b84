package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Provider  ProviderConfig  `yaml:"provider"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Engine    EngineConfig    `yaml:"engine"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProviderConfig describes the upstream dispatch platform connection.
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "kafka" or "mqtt"
	Kafka               KafkaConfig   `yaml:"kafka"`
	MQTT                MQTTConfig    `yaml:"mqtt"`
	FleetTopic          string        `yaml:"fleet_topic"`
	PositionsTopic      string        `yaml:"positions_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
	StationID           string        `yaml:"station_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// EngineConfig carries the classification tunables. The pause detection
// numbers are deployment-specific operational patches, kept in config so
// a vocabulary shift upstream is a config edit instead of a release.
type EngineConfig struct {
	PauseGPSStaleness             time.Duration `yaml:"pause_gps_staleness"`
	PauseAnomalousQueuePosition   int           `yaml:"pause_anomalous_queue_position"`
	PauseDynamicThresholdFallback int           `yaml:"pause_dynamic_threshold_fallback"`
	TreatNoDataAsBreak            bool          `yaml:"treat_no_data_as_break"`
	SuggestionMinConfidence       float64       `yaml:"suggestion_min_confidence"`
	CacheEvictionAfter            time.Duration `yaml:"cache_eviction_after"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "cabwatch.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "cabwatch",
				User:     "cabwatch",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Provider: ProviderConfig{
			BaseURL:      "https://ghost.example.com/api/v1",
			PollInterval: 15 * time.Second,
			Timeout:      10 * time.Second,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8084,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Backend: "kafka",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "cabwatch",
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "cabwatch-core",
			},
			FleetTopic:          "cabwatch.fleet",
			PositionsTopic:      "cabwatch/positions",
			OutboxDrainInterval: 5 * time.Second,
			StationID:           "core",
		},
		Engine: EngineConfig{
			PauseGPSStaleness:             20 * time.Minute,
			PauseAnomalousQueuePosition:   4,
			PauseDynamicThresholdFallback: 7,
			TreatNoDataAsBreak:            false,
			SuggestionMinConfidence:       0.6,
			CacheEvictionAfter:            0, // disabled
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
