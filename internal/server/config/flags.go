package config

import (
	"flag"
	"os"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN; empty keeps the in-memory store
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-i string   instance id
//	-o string   genesis owner actor id
//	-w int      cooldown, seconds
//	-k string   sealing key, hex
//	-e string   oracle signing seed, hex
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-o", "-w", "-k", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenSecret, "s", config.TokenSecret, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.StringVar(&config.InstanceID, "i", config.InstanceID, "instance id")
	fs.StringVar(&config.OwnerID, "o", config.OwnerID, "genesis owner")

	cooldown := fs.Int("w", int(config.Cooldown.Seconds()), "cooldown (in seconds)")

	fs.StringVar(&config.SealingKeyHex, "k", config.SealingKeyHex, "sealing key (hex)")
	fs.StringVar(&config.OracleSeedHex, "e", config.OracleSeedHex, "oracle signing seed (hex)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.Cooldown = time.Duration(*cooldown) * time.Second
}
