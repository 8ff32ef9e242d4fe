package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// keyAlphabet excludes visually confusable characters (0/O, 1/I/L) so that
// printed vouchers and license keys survive being typed from paper.
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomKeyPart(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range bytes {
		out[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(out), nil
}

// GenerateLicenseKey builds a key in the form SLUG-TYPE-XXXX-XXXX.
func GenerateLicenseKey(productSlug, licenseType string) (string, error) {
	part, err := randomKeyPart(8)
	if err != nil {
		return "", err
	}
	slug := strings.ToUpper(strings.TrimSpace(productSlug))
	return fmt.Sprintf("%s-%s-%s-%s", slug, strings.ToUpper(licenseType), part[:4], part[4:]), nil
}

// GenerateVoucherCode builds a redemption code in the form FT-XXXX-XXXX-XXXX.
func GenerateVoucherCode() (string, error) {
	parts := make([]string, 3)
	for i := range parts {
		p, err := randomKeyPart(4)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return "FT-" + strings.Join(parts, "-"), nil
}
