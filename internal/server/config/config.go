// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the analysis server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - TokenSecret: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: access token lifetime.
//   - InstanceID: deployment identity mixed into every state commitment.
//   - OwnerID: genesis owner actor id.
//   - Cooldown: genesis per-actor cooldown.
//   - SealingKeyHex: 32-byte ciphertext sealing key, hex encoded.
//   - OracleSeedHex: 32-byte ed25519 seed for the in-process oracle, hex encoded.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	TokenSecret           string
	TokenValidityDuration time.Duration
	InstanceID            string
	OwnerID               string
	Cooldown              time.Duration
	SealingKeyHex         string
	OracleSeedHex         string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = ""
	c.TokenSecret = "secretKey"
	c.TokenValidityDuration = 60 * time.Minute
	c.InstanceID = "nutrition-dev"
	c.OwnerID = "owner"
	c.Cooldown = 60 * time.Second
	c.SealingKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	c.OracleSeedHex = "202122232425262728292a2b2c2d2e2f303132333435363738393a3b3c3d3e3f"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
