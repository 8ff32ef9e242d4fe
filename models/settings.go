package models

// SettingKeyRevalidation clave reconocida de configuración dinámica.
const SettingKeyRevalidation = "revalidation"

// Setting fila clave→JSON de configuración dinámica.
type Setting struct {
	Key       string `json:"key"`
	ValueJSON string `json:"value_json"`
	UpdatedAt string `json:"updated_at"`
}

// RevalidationSetting forma tipada del valor de "revalidation".
// OfflineDays es la ventana de revalidación por defecto cuando la licencia
// no define revalidate_days.
type RevalidationSetting struct {
	OfflineDays int `json:"offlineDays"`
}
