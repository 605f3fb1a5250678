// Package fhe defines the encrypted-integer adapter consumed by the analysis
// engine: an opaque 64-bit encrypted integer, an encrypted boolean, and the
// fixed operation set a backing scheme has to provide. The arithmetic is
// two's-complement: negative constants are lifted as their wrapped unsigned
// form, Div truncates toward zero and Ge compares signed values.
//
// The package ships one Scheme implementation, SealedScheme, a
// trusted-evaluator scheme sealed with an AEAD key. A lattice-backed scheme
// can be substituted behind the same interface.
package fhe

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Handle is an opaque, serializable reference to a ciphertext: the SHA3-256
// digest of its wire bytes. Handles are what gets hashed into a request
// commitment and transmitted to the decryption oracle.
type Handle [32]byte

// HandleOf computes the handle for raw ciphertext bytes.
func HandleOf(ciphertext []byte) Handle {
	return sha3.Sum256(ciphertext)
}

func (h Handle) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

// Int is an encrypted 64-bit integer. The zero value is uninitialized and
// acts as the absence sentinel: operations over uninitialized operands yield
// uninitialized results.
type Int struct {
	ct     []byte
	handle Handle
}

func newInt(ct []byte) Int {
	return Int{ct: ct, handle: HandleOf(ct)}
}

// IsInitialized reports whether the value carries a ciphertext.
func (x Int) IsInitialized() bool { return len(x.ct) > 0 }

// Handle returns the ciphertext handle, or the zero handle if uninitialized.
func (x Int) Handle() Handle { return x.handle }

// Bytes returns a copy of the ciphertext wire bytes.
func (x Int) Bytes() []byte {
	if x.ct == nil {
		return nil
	}
	out := make([]byte, len(x.ct))
	copy(out, x.ct)
	return out
}

// Bool is an encrypted boolean produced by comparisons and consumed by
// Select.
type Bool struct {
	ct     []byte
	handle Handle
}

func (b Bool) IsInitialized() bool { return len(b.ct) > 0 }

func (b Bool) Handle() Handle { return b.handle }

// Scheme is the encrypted-arithmetic adapter. Implementations must make
// operation outputs deterministic functions of their operand ciphertexts so
// that re-evaluating an expression over the same stored inputs reproduces
// the same handles; only Encrypt may be randomized.
type Scheme interface {
	// Encrypt produces a fresh, randomized ciphertext for v.
	Encrypt(v uint64) (Int, error)

	// Lift produces the deterministic trivial ciphertext of a constant.
	Lift(v uint64) Int

	Add(a, b Int) Int
	Sub(a, b Int) Int
	Mul(a, b Int) Int
	// Div truncates toward zero on the signed interpretation; division by
	// encrypted zero yields encrypted zero.
	Div(a, b Int) Int

	Eq(a, b Int) Bool
	// Ge is a signed comparison.
	Ge(a, b Int) Bool

	// Select returns a if c holds, b otherwise. Both arms are always
	// materialized; the choice is not observable from the ciphertexts.
	Select(c Bool, a, b Int) Int

	// FromBytes validates ciphertext wire bytes and returns the value.
	FromBytes(ct []byte) (Int, error)

	// VerifyProof checks the oracle attestation over a decryption result.
	VerifyProof(requestID string, cleartext, proof []byte) bool
}

// ProofMessage is the byte string an oracle attestation signs: the request
// id followed by the cleartext payload. Both sides of the protocol must
// agree on it.
func ProofMessage(requestID string, cleartext []byte) []byte {
	msg := make([]byte, 0, len(requestID)+len(cleartext))
	msg = append(msg, requestID...)
	msg = append(msg, cleartext...)
	return msg
}
