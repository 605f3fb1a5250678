package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.TokenSecret, "secretKey")
	assert.Equal(t, c.TokenValidityDuration, 60*time.Minute)
	assert.Equal(t, c.InstanceID, "nutrition-dev")
	assert.Equal(t, c.OwnerID, "owner")
	assert.Equal(t, c.Cooldown, 60*time.Second)
	assert.Len(t, c.SealingKeyHex, 64)
	assert.Len(t, c.OracleSeedHex, 64)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.TokenSecret, "secretKey")
	assert.Equal(t, c.InstanceID, "nutrition-dev")
	assert.Equal(t, c.OwnerID, "owner")
	assert.Equal(t, c.Cooldown, 60*time.Second)
}
