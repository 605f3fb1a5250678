package fhe

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// SealedScheme is a trusted-evaluator Scheme: ciphertexts are
// ChaCha20-Poly1305 boxes under a sealing key that models the
// enclave/coprocessor boundary. Operation outputs are re-sealed under a
// nonce derived from the operation tag and the operand handles, which makes
// evaluation deterministic without weakening fresh encryptions.
//
// The scheme keeps a handle→ciphertext registry so a decryption oracle can
// resolve the handles it is asked to open. Engine code never reads it.
type SealedScheme struct {
	aead      cipher.AEAD
	oraclePub ed25519.PublicKey

	mu  sync.RWMutex
	reg map[Handle][]byte
}

var errCiphertext = errors.New("malformed ciphertext")

// NewSealedScheme builds a scheme from a 32-byte sealing key and the public
// key the oracle signs its results with.
func NewSealedScheme(sealingKey []byte, oraclePub ed25519.PublicKey) (*SealedScheme, error) {
	aead, err := chacha20poly1305.New(sealingKey)
	if err != nil {
		return nil, fmt.Errorf("sealing key: %w", err)
	}
	if len(oraclePub) != ed25519.PublicKeySize {
		return nil, errors.New("oracle public key: wrong size")
	}
	return &SealedScheme{
		aead:      aead,
		oraclePub: oraclePub,
		reg:       make(map[Handle][]byte),
	}, nil
}

// deriveNonce binds an operation output to its inputs. Same tag and same
// operand handles always seal under the same nonce.
func deriveNonce(tag string, operands ...Handle) []byte {
	h := sha3.New256()
	h.Write([]byte(tag))
	for _, op := range operands {
		h.Write(op[:])
	}
	return h.Sum(nil)[:chacha20poly1305.NonceSize]
}

func (s *SealedScheme) seal(nonce []byte, v uint64) []byte {
	var pt [8]byte
	binary.BigEndian.PutUint64(pt[:], v)
	out := make([]byte, 0, chacha20poly1305.NonceSize+8+chacha20poly1305.Overhead)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, pt[:], nil)
}

func (s *SealedScheme) open(ct []byte) (uint64, error) {
	if len(ct) <= chacha20poly1305.NonceSize {
		return 0, errCiphertext
	}
	pt, err := s.aead.Open(nil, ct[:chacha20poly1305.NonceSize], ct[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return 0, errCiphertext
	}
	if len(pt) != 8 {
		return 0, errCiphertext
	}
	return binary.BigEndian.Uint64(pt), nil
}

func (s *SealedScheme) register(ct []byte) Int {
	x := newInt(ct)
	s.mu.Lock()
	s.reg[x.handle] = ct
	s.mu.Unlock()
	return x
}

// CiphertextFor resolves a handle to its ciphertext bytes. The decryption
// oracle uses it to snapshot requested ciphertexts.
func (s *SealedScheme) CiphertextFor(h Handle) ([]byte, bool) {
	s.mu.RLock()
	ct, ok := s.reg[h]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := make([]byte, len(ct))
	copy(out, ct)
	return out, true
}

func (s *SealedScheme) Encrypt(v uint64) (Int, error) {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Int{}, fmt.Errorf("nonce: %w", err)
	}
	return s.register(s.seal(nonce, v)), nil
}

func (s *SealedScheme) Lift(v uint64) Int {
	var vb [8]byte
	binary.BigEndian.PutUint64(vb[:], v)
	h := sha3.New256()
	h.Write([]byte("lift"))
	h.Write(vb[:])
	nonce := h.Sum(nil)[:chacha20poly1305.NonceSize]
	return s.register(s.seal(nonce, v))
}

func (s *SealedScheme) binop(tag string, a, b Int, f func(x, y uint64) uint64) Int {
	if !a.IsInitialized() || !b.IsInitialized() {
		return Int{}
	}
	va, err := s.open(a.ct)
	if err != nil {
		return Int{}
	}
	vb, err := s.open(b.ct)
	if err != nil {
		return Int{}
	}
	nonce := deriveNonce(tag, a.handle, b.handle)
	return s.register(s.seal(nonce, f(va, vb)))
}

func (s *SealedScheme) Add(a, b Int) Int {
	return s.binop("add", a, b, func(x, y uint64) uint64 { return x + y })
}

func (s *SealedScheme) Sub(a, b Int) Int {
	return s.binop("sub", a, b, func(x, y uint64) uint64 { return x - y })
}

func (s *SealedScheme) Mul(a, b Int) Int {
	return s.binop("mul", a, b, func(x, y uint64) uint64 { return x * y })
}

func (s *SealedScheme) Div(a, b Int) Int {
	return s.binop("div", a, b, func(x, y uint64) uint64 {
		if y == 0 {
			return 0
		}
		return uint64(int64(x) / int64(y))
	})
}

func (s *SealedScheme) cmp(tag string, a, b Int, f func(x, y uint64) bool) Bool {
	if !a.IsInitialized() || !b.IsInitialized() {
		return Bool{}
	}
	va, err := s.open(a.ct)
	if err != nil {
		return Bool{}
	}
	vb, err := s.open(b.ct)
	if err != nil {
		return Bool{}
	}
	var v uint64
	if f(va, vb) {
		v = 1
	}
	ct := s.seal(deriveNonce(tag, a.handle, b.handle), v)
	out := Bool{ct: ct, handle: HandleOf(ct)}
	s.mu.Lock()
	s.reg[out.handle] = ct
	s.mu.Unlock()
	return out
}

func (s *SealedScheme) Eq(a, b Int) Bool {
	return s.cmp("eq", a, b, func(x, y uint64) bool { return x == y })
}

func (s *SealedScheme) Ge(a, b Int) Bool {
	return s.cmp("ge", a, b, func(x, y uint64) bool { return int64(x) >= int64(y) })
}

func (s *SealedScheme) Select(c Bool, a, b Int) Int {
	if !c.IsInitialized() || !a.IsInitialized() || !b.IsInitialized() {
		return Int{}
	}
	vc, err := s.open(c.ct)
	if err != nil {
		return Int{}
	}
	// Both arms are opened regardless of the condition.
	va, errA := s.open(a.ct)
	vb, errB := s.open(b.ct)
	if errA != nil || errB != nil {
		return Int{}
	}
	v := vb
	if vc != 0 {
		v = va
	}
	nonce := deriveNonce("select", c.handle, a.handle, b.handle)
	return s.register(s.seal(nonce, v))
}

func (s *SealedScheme) FromBytes(ct []byte) (Int, error) {
	if _, err := s.open(ct); err != nil {
		return Int{}, err
	}
	dup := make([]byte, len(ct))
	copy(dup, ct)
	return s.register(dup), nil
}

func (s *SealedScheme) VerifyProof(requestID string, cleartext, proof []byte) bool {
	if len(proof) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(s.oraclePub, ProofMessage(requestID, cleartext), proof)
}

// Decryptor is the key-holder side of the sealed scheme, used by the
// decryption oracle. It can open ciphertexts but performs no arithmetic.
type Decryptor struct {
	aead cipher.AEAD
}

func NewDecryptor(sealingKey []byte) (*Decryptor, error) {
	aead, err := chacha20poly1305.New(sealingKey)
	if err != nil {
		return nil, fmt.Errorf("sealing key: %w", err)
	}
	return &Decryptor{aead: aead}, nil
}

// Decrypt opens a sealed ciphertext and returns the 64-bit value.
func (d *Decryptor) Decrypt(ciphertext []byte) (uint64, error) {
	if len(ciphertext) <= chacha20poly1305.NonceSize {
		return 0, errCiphertext
	}
	pt, err := d.aead.Open(nil, ciphertext[:chacha20poly1305.NonceSize], ciphertext[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return 0, errCiphertext
	}
	if len(pt) != 8 {
		return 0, errCiphertext
	}
	return binary.BigEndian.Uint64(pt), nil
}
