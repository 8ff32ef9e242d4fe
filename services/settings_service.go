package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// SettingsService gestiona la configuración dinámica clave→JSON. Las claves
// reconocidas tienen accesores tipados; el resto se expone como JSON crudo.
type SettingsService interface {
	RevalidationDays(ctx context.Context, fallback int) int
	Get(ctx context.Context, key string) (json.RawMessage, error)
	GetAll(ctx context.Context) (map[string]json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}

type settingsService struct {
	db SQLExecutor
}

// NewSettingsService crea la implementación sobre un SQLExecutor.
func NewSettingsService(db SQLExecutor) SettingsService {
	return &settingsService{db: db}
}

// RevalidationDays devuelve la ventana de revalidación del setting
// "revalidation", o fallback si falta o no es parseable.
func (s *settingsService) RevalidationDays(ctx context.Context, fallback int) int {
	raw, err := s.Get(ctx, models.SettingKeyRevalidation)
	if err != nil {
		return fallback
	}

	var setting models.RevalidationSetting
	if err := json.Unmarshal(raw, &setting); err != nil || setting.OfflineDays <= 0 {
		return fallback
	}
	return setting.OfflineDays
}

func (s *settingsService) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value_json FROM settings WHERE setting_key = ?`, key,
	).Scan(&value)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *settingsService) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT setting_key, value_json FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// Put hace upsert de la clave. Select-then-write al estilo del resto del
// código; la PK evita duplicados.
func (s *settingsService) Put(ctx context.Context, key string, value json.RawMessage) error {
	now := utils.FormatDBTime(utils.NowUTC())

	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT setting_key FROM settings WHERE setting_key = ?`, key,
	).Scan(&existing)

	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO settings (setting_key, value_json, updated_at) VALUES (?, ?, ?)`,
			key, string(value), now,
		)
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE settings SET value_json = ?, updated_at = ? WHERE setting_key = ?`,
		string(value), now, key,
	)
	return err
}
