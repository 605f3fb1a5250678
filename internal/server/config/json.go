package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/flagx"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// allows parsing both string values such as "1s" and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	TokenSecret           string         `json:"token_secret"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	InstanceID            string         `json:"instance_id"`
	OwnerID               string         `json:"owner_id"`
	Cooldown              timex.Duration `json:"cooldown"`
	SealingKeyHex         string         `json:"sealing_key_hex"`
	OracleSeedHex         string         `json:"oracle_seed_hex"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config command-line flags into the provided Config. If neither flag
// is set, nothing is loaded. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.TokenSecret = c.TokenSecret
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.InstanceID = c.InstanceID
	config.OwnerID = c.OwnerID
	config.Cooldown = time.Duration(c.Cooldown.Duration)
	config.SealingKeyHex = c.SealingKeyHex
	config.OracleSeedHex = c.OracleSeedHex
}
