package utils

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyB64(t *testing.T) (seedB64, fullB64 string) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(priv.Seed()), base64.StdEncoding.EncodeToString(priv)
}

func TestEd25519SignAndVerify(t *testing.T) {
	seedB64, _ := newTestKeyB64(t)
	payload := []byte(`{"licenseId":"lic-1","nonce":"n1"}`)

	sig, err := Ed25519SignBase64(payload, seedB64)
	require.NoError(t, err)

	pub, err := Ed25519PublicKeyBase64(seedB64)
	require.NoError(t, err)

	assert.True(t, Ed25519VerifyBase64(payload, sig, pub))
	assert.False(t, Ed25519VerifyBase64([]byte(`{"licenseId":"lic-2"}`), sig, pub))
}

func TestEd25519AcceptsSeedAndFullKey(t *testing.T) {
	seedB64, fullB64 := newTestKeyB64(t)
	payload := []byte("material")

	sigSeed, err := Ed25519SignBase64(payload, seedB64)
	require.NoError(t, err)
	sigFull, err := Ed25519SignBase64(payload, fullB64)
	require.NoError(t, err)

	// misma clave en ambas codificaciones produce la misma firma
	assert.Equal(t, sigSeed, sigFull)
}

func TestEd25519RejectsBadKeyMaterial(t *testing.T) {
	_, err := Ed25519SignBase64([]byte("x"), "no-es-base64!!")
	assert.Error(t, err)

	_, err = Ed25519SignBase64([]byte("x"), base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestEd25519VerifyBadInputs(t *testing.T) {
	seedB64, _ := newTestKeyB64(t)
	pub, err := Ed25519PublicKeyBase64(seedB64)
	require.NoError(t, err)

	assert.False(t, Ed25519VerifyBase64([]byte("x"), "not-base64!!", pub))
	assert.False(t, Ed25519VerifyBase64([]byte("x"), base64.StdEncoding.EncodeToString([]byte("sig")), "not-base64!!"))
}
