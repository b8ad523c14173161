package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory     = "memory"
	StoreClickHouse = "clickhouse"

	LinkSimulator = "simulator"
	LinkWebSocket = "websocket"
)

type ServerConfig struct {
	ListenAddr          string `split_words:"true" required:"true" default:":8001"`
	StoreBackend        string `split_words:"true" required:"true" default:"clickhouse"`
	DefaultHistoryLimit int    `split_words:"true" default:"50"`

	ClickHouseAddresses []string `split_words:"true" default:"127.0.0.1:9000"`
	ClickHouseDatabase  string   `split_words:"true" default:"neoview"`
	ClickHouseUsername  string   `split_words:"true" default:"default"`
	ClickHousePassword  string   `split_words:"true"`

	RedisAddr     string        `split_words:"true"`
	RedisPassword string        `split_words:"true"`
	RedisDB       int           `split_words:"true" default:"0"`
	StatsCacheTTL time.Duration `split_words:"true" default:"30s"`
}

type BridgeConfig struct {
	APIURL         string        `split_words:"true" required:"true" default:"http://localhost:8001"`
	RequestTimeout time.Duration `split_words:"true" default:"10s"`
	DeviceID       string        `split_words:"true" default:"ESP32_001"`

	Link         string `split_words:"true" required:"true" default:"simulator"`
	WebSocketURL string `split_words:"true" default:"ws://192.168.4.1/glucose"`

	SimulatorInterval time.Duration `split_words:"true" default:"5s"`
	SimulatorMin      float64       `split_words:"true" default:"60"`
	SimulatorMax      float64       `split_words:"true" default:"250"`
}

func LoadServer() (*ServerConfig, error) {
	var conf ServerConfig
	if err := load("NEOVIEW", &conf); err != nil {
		return nil, err
	}
	switch conf.StoreBackend {
	case StoreMemory, StoreClickHouse:
	default:
		return nil, errors.New("NEOVIEW_STORE_BACKEND must be memory or clickhouse")
	}
	return &conf, nil
}

func LoadBridge() (*BridgeConfig, error) {
	var conf BridgeConfig
	if err := load("NEOVIEW_BRIDGE", &conf); err != nil {
		return nil, err
	}
	switch conf.Link {
	case LinkSimulator, LinkWebSocket:
	default:
		return nil, errors.New("NEOVIEW_BRIDGE_LINK must be simulator or websocket")
	}
	if conf.SimulatorMax < conf.SimulatorMin {
		return nil, errors.New("NEOVIEW_BRIDGE_SIMULATOR_MAX is below NEOVIEW_BRIDGE_SIMULATOR_MIN")
	}
	return &conf, nil
}

// load reads an optional .env file before processing the environment.
// Variables already set in the environment win over the file.
func load(prefix string, dst interface{}) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return envconfig.Process(prefix, dst)
}
