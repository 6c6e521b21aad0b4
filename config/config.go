package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Agent struct {
		Secret      string `mapstructure:"secret"`
		PoliciesDir string `mapstructure:"policiesDir"`
	} `mapstructure:"agent"`
	AI struct {
		Model           string        `mapstructure:"model"`
		EmbeddingModel  string        `mapstructure:"embeddingModel"`
		EmbeddingDim    int           `mapstructure:"embeddingDim"`
		GenerateTimeout time.Duration `mapstructure:"generateTimeout"`
		ChatTimeout     time.Duration `mapstructure:"chatTimeout"`
		EmbedTimeout    time.Duration `mapstructure:"embedTimeout"`
	} `mapstructure:"ai"`
	Search struct {
		MaxResults    int           `mapstructure:"maxResults"`
		SearchDepth   string        `mapstructure:"searchDepth"`
		Timeout       time.Duration `mapstructure:"timeout"`
		CacheDuration time.Duration `mapstructure:"cacheDuration"`
	} `mapstructure:"search"`
	RAG struct {
		MinCorpusSize int `mapstructure:"minCorpusSize"`
		TopK          int `mapstructure:"topK"`
		ChunkSize     int `mapstructure:"chunkSize"`
		ChunkOverlap  int `mapstructure:"chunkOverlap"`
	} `mapstructure:"rag"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
