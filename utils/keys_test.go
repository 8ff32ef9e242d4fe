package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	key, err := GenerateLicenseKey("restobar", "full")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^RESTOBAR-FULL-[A-Z2-9]{4}-[A-Z2-9]{4}$`), key)
}

func TestGenerateVoucherCodeFormat(t *testing.T) {
	code, err := GenerateVoucherCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^FT-[A-Z2-9]{4}-[A-Z2-9]{4}-[A-Z2-9]{4}$`), code)
}

func TestKeyAlphabetAvoidsConfusables(t *testing.T) {
	for _, c := range []byte{'0', 'O', '1', 'I', 'L'} {
		assert.NotContains(t, keyAlphabet, string(c))
	}
}

func TestGeneratedKeysAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateVoucherCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestHashDeviceFingerprintIsStable(t *testing.T) {
	a := HashDeviceFingerprint("fp-device-1")
	b := HashDeviceFingerprint("fp-device-1")
	c := HashDeviceFingerprint("fp-device-2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
