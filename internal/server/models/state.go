package models

import "time"

// SystemState is the single global lifecycle row: owner, pause switch,
// shared cooldown duration and the batch counter. Provider membership,
// cooldown stamps and processed flags live in their own tables.
type SystemState struct {
	OwnerID        string
	Paused         bool
	Cooldown       time.Duration
	CurrentBatchID int64
	BatchOpen      bool
}

// CooldownTrack names one of the two independent per-actor rate-limit
// timestamp tracks.
type CooldownTrack string

const (
	TrackSubmission CooldownTrack = "submission"
	TrackRequest    CooldownTrack = "request"
)
