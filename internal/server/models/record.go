// Package models contains the persistence-level shapes shared by
// repositories, the engine, and the transport layer.
package models

// EncryptedRecord is the stored form of one provider submission: eight
// ciphertext blobs keyed by (batch, provider). The record is all-or-nothing;
// a row either has every field or does not exist.
type EncryptedRecord struct {
	BatchID    int64
	ProviderID string

	DailyCalories []byte
	ProteinGrams  []byte
	CarbGrams     []byte
	FatGrams      []byte
	WaterML       []byte
	ActivityLevel []byte
	HealthGoal    []byte
	AllergyMask   []byte
}
