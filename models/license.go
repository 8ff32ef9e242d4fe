package models

import (
	"time"

	"fulltechlicense/utils"
)

// License estados
const (
	LicenseStatusActive    = "ACTIVE"
	LicenseStatusSuspended = "SUSPENDED"
	LicenseStatusExpired   = "EXPIRED"
	LicenseStatusRevoked   = "REVOKED"
)

// License tipos y planes
const (
	LicenseTypeDemo = "DEMO"
	LicenseTypeFull = "FULL"

	PlanSubscription = "SUBSCRIPTION"
	PlanPerpetual    = "PERPETUAL"
)

// License es el registro de derecho de uso que valida el cliente.
type License struct {
	ID                string                 `json:"id"`
	TenantID          string                 `json:"tenant_id"`
	ProductID         string                 `json:"product_id"`
	Key               string                 `json:"key"`
	Type              string                 `json:"type"`
	PlanType          string                 `json:"plan_type"`
	Status            string                 `json:"status"`
	StartsAt          string                 `json:"starts_at"`
	ExpiresAt         *string                `json:"expires_at"` // nil = perpetua
	MaxDevices        int                    `json:"max_devices"`
	MaxActivations    int                    `json:"max_activations"`
	OfflineAllowed    bool                   `json:"offline_allowed"`
	RevalidateDays    *int                   `json:"revalidate_days"`
	AllowedVersionMin *string                `json:"allowed_version_min"`
	AllowedVersionMax *string                `json:"allowed_version_max"`
	Modules           map[string]bool        `json:"modules"`
	Features          map[string]interface{} `json:"features"`
	Notes             string                 `json:"notes"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

// ExpiresAtTime devuelve la expiración como time.Time, o nil si es perpetua.
func (l *License) ExpiresAtTime() *time.Time {
	if l.ExpiresAt == nil || *l.ExpiresAt == "" {
		return nil
	}
	ts, err := utils.ParseDBTime(*l.ExpiresAt)
	if err != nil {
		return nil
	}
	return &ts
}

// IsExpired indica si la expiración ya pasó respecto a now.
func (l *License) IsExpired(now time.Time) bool {
	exp := l.ExpiresAtTime()
	return exp != nil && exp.Before(now)
}

// CreateLicenseRequest alta de licencia por el administrador.
type CreateLicenseRequest struct {
	TenantID          string                 `json:"tenant_id"`
	ProductID         string                 `json:"product_id"`
	Type              string                 `json:"type"`
	PlanType          string                 `json:"plan_type"`
	ExpiresAt         *string                `json:"expires_at"`
	MaxDevices        int                    `json:"max_devices"`
	MaxActivations    int                    `json:"max_activations"`
	OfflineAllowed    bool                   `json:"offline_allowed"`
	RevalidateDays    *int                   `json:"revalidate_days"`
	AllowedVersionMin *string                `json:"allowed_version_min"`
	AllowedVersionMax *string                `json:"allowed_version_max"`
	Modules           map[string]bool        `json:"modules"`
	Features          map[string]interface{} `json:"features"`
	Notes             string                 `json:"notes"`
}

// UpdateLicenseRequest modificación de licencia por el administrador.
type UpdateLicenseRequest struct {
	MaxDevices        *int                   `json:"max_devices"`
	MaxActivations    *int                   `json:"max_activations"`
	OfflineAllowed    *bool                  `json:"offline_allowed"`
	RevalidateDays    *int                   `json:"revalidate_days"`
	AllowedVersionMin *string                `json:"allowed_version_min"`
	AllowedVersionMax *string                `json:"allowed_version_max"`
	Modules           map[string]bool        `json:"modules"`
	Features          map[string]interface{} `json:"features"`
	Notes             *string                `json:"notes"`
}

// RenewLicenseRequest extiende la expiración addDays días.
type RenewLicenseRequest struct {
	AddDays int `json:"add_days"`
}
