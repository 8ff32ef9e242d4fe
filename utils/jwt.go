package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer        = "fulltech-api"
	audienceActivation = "activation"
	audienceBackoffice = "backoffice"
)

// ActivationClaims are the claims embedded in an activation token. The
// entitlement snapshot is typed; only modules/features stay open-ended maps
// because their keys are product-defined.
type ActivationClaims struct {
	LicenseID     string                 `json:"licenseId"`
	TenantID      string                 `json:"tenantId"`
	ProductID     string                 `json:"productId"`
	DeviceIDHash  string                 `json:"deviceIdHash"`
	Modules       map[string]bool        `json:"modules"`
	Features      map[string]interface{} `json:"features"`
	LicenseType   string                 `json:"licenseType"`
	LicenseStatus string                 `json:"licenseStatus"`
	Expiry        string                 `json:"expiry"`
	IssuedAtISO   string                 `json:"issuedAt"`
	OfflineDays   int                    `json:"offlineDays"`
	jwt.RegisteredClaims
}

// AccessClaims are the claims of a backoffice access token.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SignActivationToken issues an HS256 activation token valid for ttl.
func SignActivationToken(secret string, claims ActivationClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{audienceActivation},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyActivationToken checks signature, issuer and audience before
// returning the claims. Authorization state is never trusted from the
// token; callers re-check the license record.
func VerifyActivationToken(secret, tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audienceActivation),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid activation token")
	}
	return claims, nil
}

// SignAccessToken issues a backoffice access token for an admin account.
func SignAccessToken(secret, userID, email, role string, ttl time.Duration) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{audienceBackoffice},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}

// VerifyAccessToken validates a backoffice token.
func VerifyAccessToken(secret, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audienceBackoffice),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}
	return claims, nil
}
