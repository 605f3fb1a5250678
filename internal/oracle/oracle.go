// Package oracle is the reference in-process decryption oracle: the
// key-holder counterpart of the sealed scheme. It snapshots the requested
// ciphertexts at request time, decrypts them off the request path, and
// delivers the signed cleartext through a callback.
//
// A production deployment would place this behind a network boundary; the
// engine only ever sees the request-id/callback contract, so swapping the
// transport does not touch it.
package oracle

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/fhe"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
)

// Resolver resolves ciphertext handles to wire bytes. The sealed scheme's
// registry satisfies it.
type Resolver interface {
	CiphertextFor(h fhe.Handle) ([]byte, bool)
}

// Callback delivers a finished decryption. The engine's OnDecrypted is the
// intended target; errors it returns are verification verdicts, not
// transport failures, so the oracle only logs them.
type Callback func(ctx context.Context, requestID string, cleartext, proof []byte) error

// Oracle holds the sealing key and the attestation signing key.
type Oracle struct {
	decryptor *fhe.Decryptor
	signKey   ed25519.PrivateKey
	resolver  Resolver
	callback  Callback
	logger    logging.Logger

	mu     sync.Mutex
	queue  []job
	notify chan struct{}
}

type job struct {
	requestID   string
	ciphertexts [][]byte
}

type Config struct {
	// SealingKey is the 32-byte key ciphertexts are sealed under.
	SealingKey []byte
	// SignKey signs the attestation over every delivered cleartext.
	SignKey  ed25519.PrivateKey
	Resolver Resolver
	Callback Callback
	Logger   logging.Logger
}

func New(cfg Config) (*Oracle, error) {
	if cfg.Resolver == nil || cfg.Callback == nil || cfg.Logger == nil {
		return nil, errors.New("oracle: missing dependency")
	}
	if len(cfg.SignKey) != ed25519.PrivateKeySize {
		return nil, errors.New("oracle: signing key wrong size")
	}
	dec, err := fhe.NewDecryptor(cfg.SealingKey)
	if err != nil {
		return nil, err
	}
	return &Oracle{
		decryptor: dec,
		signKey:   cfg.SignKey,
		resolver:  cfg.Resolver,
		callback:  cfg.Callback,
		logger:    cfg.Logger.With("module", "oracle"),
		notify:    make(chan struct{}, 1),
	}, nil
}

// RequestDecryption snapshots the ciphertexts behind the handles, assigns a
// request id and queues the job. It never decrypts or calls back inline, so
// it is safe to call while the engine holds its invocation lock.
func (o *Oracle) RequestDecryption(_ context.Context, handles []fhe.Handle) (string, error) {
	cts := make([][]byte, len(handles))
	for i, h := range handles {
		ct, ok := o.resolver.CiphertextFor(h)
		if !ok {
			return "", fmt.Errorf("handle %s: no ciphertext", h.Hex())
		}
		cts[i] = ct
	}
	requestID := uuid.NewString()

	o.mu.Lock()
	o.queue = append(o.queue, job{requestID: requestID, ciphertexts: cts})
	o.mu.Unlock()
	select {
	case o.notify <- struct{}{}:
	default:
	}
	return requestID, nil
}

// Run processes queued jobs until the context is cancelled.
func (o *Oracle) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.notify:
			o.drain(ctx)
		}
	}
}

// Flush synchronously processes everything queued so far. Tests and
// single-process deployments use it instead of Run.
func (o *Oracle) Flush(ctx context.Context) {
	o.drain(ctx)
}

func (o *Oracle) drain(ctx context.Context) {
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			o.mu.Unlock()
			return
		}
		j := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()
		o.process(ctx, j)
	}
}

// process decrypts one job and delivers it. The payload is the decrypted
// words as consecutive big-endian 64-bit values in request order.
func (o *Oracle) process(ctx context.Context, j job) {
	cleartext := make([]byte, 8*len(j.ciphertexts))
	for i, ct := range j.ciphertexts {
		v, err := o.decryptor.Decrypt(ct)
		if err != nil {
			o.logger.Error(ctx, "undecryptable ciphertext, dropping request",
				"request_id", j.requestID, "index", i, "error", err.Error())
			return
		}
		binary.BigEndian.PutUint64(cleartext[i*8:], v)
	}
	proof := ed25519.Sign(o.signKey, fhe.ProofMessage(j.requestID, cleartext))
	if err := o.callback(ctx, j.requestID, cleartext, proof); err != nil {
		o.logger.Warn(ctx, "callback rejected decryption result",
			"request_id", j.requestID, "error", err.Error())
		return
	}
	o.logger.Info(ctx, "decryption delivered", "request_id", j.requestID)
}
