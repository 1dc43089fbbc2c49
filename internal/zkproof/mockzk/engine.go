package mockzk

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"spectra/pkg/domain"
)

// ErrProofGeneration is the only error generators return.
var ErrProofGeneration = errors.New("failed to generate proof")

const pointBytes = 32

// Engine generates and checks mock proofs.
type Engine struct {
	random io.Reader
	now    func() time.Time
}

type Option func(*Engine)

// WithRandom replaces crypto/rand as the source of point and salt bytes.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) { e.random = r }
}

// WithClock sets the clock GenerateAgeProof uses when currentYear is 0.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{random: rand.Reader, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sound is always false.
func (e *Engine) Sound() bool { return false }

// GenerateAgeProof claims currentYear-birthYear >= threshold. A zero
// currentYear means the engine clock's year. The points do not depend on
// birthYear.
func (e *Engine) GenerateAgeProof(birthYear, currentYear, threshold int) (Result, error) {
	if currentYear == 0 {
		currentYear = e.now().Year()
	}
	isValid := domain.YearsBetween(birthYear, currentYear) >= threshold

	proof, err := e.points()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Proof:         proof,
		PublicSignals: []string{flag(isValid), strconv.Itoa(currentYear), strconv.Itoa(threshold)},
		Verified:      true,
	}, nil
}

// VerifyAgeProof checks shape and public-signal bounds only. It never
// returns an error; anything unexpected is false.
func (e *Engine) VerifyAgeProof(proof *Proof, publicSignals []string) bool {
	if proof == nil || len(publicSignals) != 3 {
		return false
	}
	if len(proof.PiA) == 0 || len(proof.PiB) == 0 || len(proof.PiC) == 0 {
		return false
	}
	if proof.Protocol != Protocol {
		return false
	}
	year, err := strconv.Atoi(publicSignals[1])
	if err != nil || year < MinYear || year > MaxYear {
		return false
	}
	threshold, err := strconv.Atoi(publicSignals[2])
	if err != nil || threshold < MinThreshold || threshold > MaxThreshold {
		return false
	}
	return true
}

// GenerateIdentityProof signals "1" when verified. The proof carries a
// commitment to subjectID.
func (e *Engine) GenerateIdentityProof(subjectID string, verified bool) (Result, error) {
	commitment, err := e.Commit(subjectID)
	if err != nil {
		return Result{}, err
	}
	proof, err := e.points()
	if err != nil {
		return Result{}, err
	}
	proof.Commitment = commitment
	return Result{Proof: proof, PublicSignals: []string{flag(verified)}, Verified: true}, nil
}

// GenerateSanctionsProof signals "1" when the subject is cleared.
func (e *Engine) GenerateSanctionsProof(_ string, sanctioned bool) (Result, error) {
	proof, err := e.points()
	if err != nil {
		return Result{}, err
	}
	return Result{Proof: proof, PublicSignals: []string{flag(!sanctioned)}, Verified: true}, nil
}

// Commit returns sha256(value || salt) with a fresh 32-byte salt. The salt
// is discarded, so the commitment can never be opened.
func (e *Engine) Commit(value string) (string, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(e.random, salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}
	h := sha256.New()
	h.Write([]byte(value))
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (e *Engine) points() (Proof, error) {
	buf := make([]byte, 8*pointBytes)
	if _, err := io.ReadFull(e.random, buf); err != nil {
		return Proof{}, fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}
	p := func(i int) string { return hex.EncodeToString(buf[i*pointBytes : (i+1)*pointBytes]) }
	return Proof{
		PiA:      []string{p(0), p(1)},
		PiB:      [][]string{{p(2), p(3)}, {p(4), p(5)}},
		PiC:      []string{p(6), p(7)},
		Protocol: Protocol,
	}, nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
