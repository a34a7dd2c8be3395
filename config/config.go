package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultConfigFile = "config.json"
	// levels understood by util/log, debug to error
	minLogLevel = 0
	maxLogLevel = 3
)

var (
	Version      string
	ConfigFile   string
	LogPath      string
	NodeID       string
	SeedList     string
	HttpRestPort uint
	Parameters   = DefaultConfiguration()
)

type Configuration struct {
	HttpRestAddr      string   `json:"HttpRestAddr"`
	HttpRestPort      uint16   `json:"HttpRestPort"`
	NodeID            string   `json:"NodeID"`
	SeedPeers         []string `json:"SeedPeers"`
	LogLevel          int      `json:"LogLevel"`
	LogPath           string   `json:"LogPath"`
	MaxLogFileSize    uint32   `json:"MaxLogSize"`
	Difficulty        int      `json:"Difficulty"`
	BlockTime         float64  `json:"BlockTime"` // in seconds
	BlockReward       float64  `json:"BlockReward"`
	MaxMiningAttempts int      `json:"MaxMiningAttempts"`
	PeerFetchTimeout  uint32   `json:"PeerFetchTimeout"` // in seconds
	PeerFetchRetries  uint32   `json:"PeerFetchRetries"`
	MaxResolveWorkers uint32   `json:"MaxResolveWorkers"`
	ResolveInterval   uint32   `json:"ResolveInterval"` // in seconds, 0 disables
	RPCReadTimeout    uint32   `json:"RPCReadTimeout"`  // in seconds
	RPCWriteTimeout   uint32   `json:"RPCWriteTimeout"` // in seconds
	RPCIPRateLimit    float64  `json:"RPCIPRateLimit"`  // requests per second
	RPCIPRateBurst    uint32   `json:"RPCIPRateBurst"`
}

// DefaultConfiguration returns a fresh copy of the built-in defaults.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		HttpRestAddr:      "0.0.0.0",
		HttpRestPort:      5001,
		SeedPeers:         []string{},
		LogLevel:          1,
		LogPath:           "",
		MaxLogFileSize:    20,
		Difficulty:        4,
		BlockTime:         10,
		BlockReward:       0.01,
		MaxMiningAttempts: 3,
		PeerFetchTimeout:  5,
		PeerFetchRetries:  2,
		MaxResolveWorkers: 8,
		ResolveInterval:   0,
		RPCReadTimeout:    5,
		RPCWriteTimeout:   60,
		RPCIPRateLimit:    10,
		RPCIPRateBurst:    100,
	}
}

func Init() error {
	file, err := OpenConfigFile()
	if err == nil {
		err = json.Unmarshal(file, Parameters)
		if err != nil {
			return err
		}
	} else {
		log.Println("Config file not exists, use default parameters.")
	}

	if len(LogPath) > 0 {
		Parameters.LogPath = LogPath
	}

	if len(NodeID) > 0 {
		Parameters.NodeID = NodeID
	}

	if len(SeedList) > 0 {
		Parameters.SeedPeers = strings.Split(SeedList, ",")
	}

	if HttpRestPort > 0 {
		if HttpRestPort > 65535 {
			return fmt.Errorf("invalid port %d", HttpRestPort)
		}
		Parameters.HttpRestPort = uint16(HttpRestPort)
	}

	return Parameters.verify()
}

func (config *Configuration) verify() error {
	if config.HttpRestPort == 0 {
		return errors.New("HttpRestPort should not be 0")
	}

	if config.LogLevel < minLogLevel || config.LogLevel > maxLogLevel {
		return fmt.Errorf("unknown log level %d", config.LogLevel)
	}

	if config.MaxLogFileSize == 0 {
		return fmt.Errorf("MaxLogFileSize should be >= 1 (MB)")
	}

	if config.BlockReward < 0 {
		return fmt.Errorf("BlockReward should be >= 0, got %v", config.BlockReward)
	}

	if config.MaxMiningAttempts <= 0 {
		return fmt.Errorf("MaxMiningAttempts should be >= 1")
	}

	if config.PeerFetchTimeout == 0 {
		return fmt.Errorf("PeerFetchTimeout should be >= 1 (s)")
	}

	if config.MaxResolveWorkers == 0 {
		return fmt.Errorf("MaxResolveWorkers should be >= 1")
	}

	if config.RPCReadTimeout == 0 || config.RPCWriteTimeout == 0 {
		return fmt.Errorf("RPCReadTimeout and RPCWriteTimeout should be >= 1 (s)")
	}

	if config.RPCIPRateLimit <= 0 || config.RPCIPRateBurst == 0 {
		return fmt.Errorf("RPCIPRateLimit and RPCIPRateBurst should be > 0")
	}

	return nil
}

func (config *Configuration) PeerFetchTimeoutDuration() time.Duration {
	return time.Duration(config.PeerFetchTimeout) * time.Second
}

func (config *Configuration) ResolveIntervalDuration() time.Duration {
	return time.Duration(config.ResolveInterval) * time.Second
}

func GetConfigFile() string {
	configFile := ConfigFile
	if configFile == "" {
		configFile = defaultConfigFile
	}
	return configFile
}

func OpenConfigFile() ([]byte, error) {
	configFile := GetConfigFile()
	_, err := os.Stat(configFile)
	if err != nil {
		return nil, err
	}
	file, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	// Remove the UTF-8 Byte Order Mark
	file = bytes.TrimPrefix(file, []byte("\xef\xbb\xbf"))
	return file, nil
}
