package utils

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// Ed25519 helpers over base64-encoded key material. The private key comes
// from configuration as either a 32-byte seed or a 64-byte full key.

func ed25519PrivateFromBase64(privateKeyB64 string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 private key encoding: %w", err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("invalid ed25519 private key length: %d", len(raw))
	}
}

// Ed25519SignBase64 signs payload and returns the base64 signature.
func Ed25519SignBase64(payload []byte, privateKeyB64 string) (string, error) {
	priv, err := ed25519PrivateFromBase64(privateKeyB64)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, payload)), nil
}

// Ed25519VerifyBase64 verifies a base64 signature against a base64 public key.
func Ed25519VerifyBase64(payload []byte, signatureB64, publicKeyB64 string) bool {
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	pub, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig)
}

// Ed25519PublicKeyBase64 derives the base64 public key from the configured
// private key.
func Ed25519PublicKeyBase64(privateKeyB64 string) (string, error) {
	priv, err := ed25519PrivateFromBase64(privateKeyB64)
	if err != nil {
		return "", err
	}
	pub := priv.Public().(ed25519.PublicKey)
	return base64.StdEncoding.EncodeToString(pub), nil
}
