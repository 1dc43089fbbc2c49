package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectra/internal/zkproof/mockzk"
)

func TestIsLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{"fresh", Credential{ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", Credential{ExpiresAt: now.Add(time.Hour), Revoked: true}, false},
		{"expired", Credential{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", Credential{ExpiresAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.IsLive(now))
		})
	}
}

func TestHasType(t *testing.T) {
	creds := []*Credential{{Type: TypeAMLCheck}, {Type: TypeAMLCheck}}
	assert.True(t, HasType(creds, TypeAMLCheck))
	assert.False(t, HasType(creds, TypeIdentityVerification))
	assert.False(t, HasType(nil, TypeAMLCheck))
}

func TestProofEnvelopeShape(t *testing.T) {
	hash := Proof{Type: ProofTypeHash, ProofPurpose: ProofPurpose, VerificationMethod: VerificationMethod, JWS: "ab"}
	b, err := json.Marshal(hash)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "zkProof")
	assert.Contains(t, string(b), `"jws":"ab"`)
	assert.False(t, hash.IsZK())

	zk := Proof{Type: ProofTypeZK, ZKProof: &mockzk.Proof{Protocol: mockzk.Protocol}, PublicSignals: []string{"1", "2026", "18"}}
	b, err = json.Marshal(zk)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"protocol":"groth16-mock"`)
	assert.NotContains(t, string(b), "jws")
	assert.True(t, zk.IsZK())
}
