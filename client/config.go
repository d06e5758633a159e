package main

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	DataDir    string `json:"data_dir"`
	LogFile    string `json:"log_file"`
	SeedDemo   bool   `json:"seed_demo"` // Create admin/admin and user/user on first run
	mu         sync.RWMutex
	configFile string
}

func NewConfig(filename string) *Config {
	if filename == "" {
		filename = "pictochat.json"
	}
	return &Config{
		configFile: filename,
		// Defaults
		DataDir:  "data",
		LogFile:  "logs/pictochat.log",
		SeedDemo: true,
	}
}

func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.configFile); os.IsNotExist(err) {
		// Create default config if not exists
		return c.saveInternal()
	}

	data, err := os.ReadFile(c.configFile)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	// Auto-update config file with any missing fields (defaults)
	return c.saveInternal()
}

func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveInternal()
}

func (c *Config) saveInternal() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configFile, data, 0644)
}
