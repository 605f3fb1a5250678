package models

// DecryptionContext binds a pending oracle request to the state it was
// issued against. Created exactly once per request; Processed flips to true
// exactly once, in the callback.
//
// BatchID == 0 is the "never created" sentinel. RequesterID is the provider
// who issued the request; the callback re-verification looks the record up
// under this identity, not under whoever delivered the callback.
type DecryptionContext struct {
	RequestID   string
	BatchID     int64
	RequesterID string
	StateHash   []byte
	Processed   bool
}
