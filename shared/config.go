package shared

import (
	"encoding/json"
	"log"
	"os"

	"github.com/tailscale/hujson"
)

const (
	configVarName = "CONFIG"               // If set, will load config.json from this path and not from devConfigPath
	devConfigPath = "dev/config.dev.jsonc" // Path to config.json in development environment
)

type Config struct {
	LogFile     string `json:"log_file"`
	LogLevel    string `json:"log_level"`
	ServicePort uint   `json:"service_port"`
	DbFile      string `json:"db_file"`
	MetricsAuth string `json:"metrics_auth"`
}

func LoadConfig() *Config {

	cfgPath := os.Getenv(configVarName)
	if len(cfgPath) == 0 {
		cfgPath = devConfigPath
	}

	var config Config
	mustDeserializeFile(cfgPath, &config)
	return &config
}

func mustDeserializeFile[T any](fileName string, obj *T) {
	var err error
	var cfgJson []byte
	cfgJson, err = os.ReadFile(fileName)
	if err != nil {
		log.Fatal(err)
	}
	// JSONC => JSON
	cfgJson, err = standardizeJSON(cfgJson)
	if err != nil {
		log.Fatal(err)
	}
	// Parse
	if err := json.Unmarshal(cfgJson, obj); err != nil {
		log.Fatal(err)
	}
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}
