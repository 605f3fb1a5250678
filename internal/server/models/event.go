package models

import "time"

// Event is an observability notification emitted by the engine on every
// successful state mutation. Events are not consumed internally.
type Event struct {
	Type   string
	At     time.Time
	Fields map[string]any
}

// Event types.
const (
	EventOwnershipTransferred = "ownership_transferred"
	EventProviderAdded        = "provider_added"
	EventProviderRemoved      = "provider_removed"
	EventPausedSet            = "paused_set"
	EventCooldownSet          = "cooldown_set"
	EventBatchOpened          = "batch_opened"
	EventBatchClosed          = "batch_closed"
	EventRecordSubmitted      = "record_submitted"
	EventDecryptionRequested  = "decryption_requested"
	EventDecryptionCompleted  = "decryption_completed"
)
