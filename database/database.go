package database

import (
	"database/sql"
	"fmt"

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// DB es el pool global que usan main y el scheduler. Los servicios reciben
// un SQLExecutor inyectado y no dependen de este global.
var DB *sql.DB

// Initialize abre la base de datos, crea el esquema y siembra los datos
// mínimos (admin inicial y setting de revalidación).
// dbType: "sqlite" o "mysql". dsn: ruta del archivo sqlite o DSN de MySQL.
func Initialize(dbType, dsn, adminEmail, adminPassword string) error {
	db, err := Open(dbType, dsn)
	if err != nil {
		return err
	}
	DB = db

	if err := SetupSchema(DB); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := SeedDefaults(DB, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	logger.Info("Database initialized (%s)", dbType)
	return nil
}

// Open abre una conexión verificada sin tocar el global.
func Open(dbType, dsn string) (*sql.DB, error) {
	if dbType == "" {
		dbType = "sqlite"
	}

	db, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dbType == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Close cierra el pool global.
func Close() {
	if DB != nil {
		DB.Close()
	}
}

// SetupSchema crea las tablas si no existen. Las restricciones de unicidad
// (key, code, nonce, (license_id, device_id_hash)) son las primitivas de
// concurrencia del sistema.
func SetupSchema(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'admin',
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) UNIQUE NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'PUBLISHED',
			current_version VARCHAR(50) NOT NULL DEFAULT '',
			offline_request_verify_key TEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS tenants (
			id VARCHAR(64) PRIMARY KEY,
			trade_name VARCHAR(255) NOT NULL,
			legal_name VARCHAR(255) NOT NULL DEFAULT '',
			contact_email VARCHAR(255),
			contact_phone VARCHAR(50),
			status VARCHAR(50) NOT NULL DEFAULT 'ACTIVE',
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS licenses (
			id VARCHAR(64) PRIMARY KEY,
			tenant_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			license_key VARCHAR(100) UNIQUE NOT NULL,
			type VARCHAR(20) NOT NULL,
			plan_type VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
			starts_at VARCHAR(50) NOT NULL DEFAULT '',
			expires_at VARCHAR(50),
			max_devices INT NOT NULL DEFAULT 1,
			max_activations INT NOT NULL DEFAULT 1,
			offline_allowed INT NOT NULL DEFAULT 1,
			revalidate_days INT,
			allowed_version_min VARCHAR(50),
			allowed_version_max VARCHAR(50),
			modules_json TEXT NOT NULL DEFAULT '{}',
			features_json TEXT NOT NULL DEFAULT '{}',
			notes TEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (tenant_id) REFERENCES tenants(id),
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,

		`CREATE TABLE IF NOT EXISTS device_activations (
			id VARCHAR(64) PRIMARY KEY,
			license_id VARCHAR(64) NOT NULL,
			device_id_hash VARCHAR(64) NOT NULL,
			app_version VARCHAR(50) NOT NULL DEFAULT '',
			activated_at VARCHAR(50) NOT NULL DEFAULT '',
			last_seen_at VARCHAR(50) NOT NULL DEFAULT '',
			revoked_at VARCHAR(50),
			UNIQUE (license_id, device_id_hash),
			FOREIGN KEY (license_id) REFERENCES licenses(id)
		)`,

		`CREATE TABLE IF NOT EXISTS vouchers (
			id VARCHAR(64) PRIMARY KEY,
			code VARCHAR(50) UNIQUE NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'UNUSED',
			product_id VARCHAR(64) NOT NULL,
			license_type VARCHAR(20) NOT NULL,
			plan_type VARCHAR(20) NOT NULL,
			license_duration_days INT,
			max_devices INT NOT NULL DEFAULT 1,
			max_activations INT NOT NULL DEFAULT 1,
			offline_allowed INT NOT NULL DEFAULT 1,
			revalidate_days INT,
			allowed_version_min VARCHAR(50),
			allowed_version_max VARCHAR(50),
			modules_json TEXT NOT NULL DEFAULT '{}',
			features_json TEXT NOT NULL DEFAULT '{}',
			notes TEXT,
			batch_name VARCHAR(255),
			expires_at VARCHAR(50),
			tenant_id VARCHAR(64),
			license_id VARCHAR(64),
			used_by_email VARCHAR(255),
			used_at VARCHAR(50),
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,

		`CREATE TABLE IF NOT EXISTS offline_requests (
			id VARCHAR(64) PRIMARY KEY,
			nonce VARCHAR(128) UNIQUE NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			tenant_id VARCHAR(64),
			license_id VARCHAR(64),
			payload_json TEXT NOT NULL,
			payload_hash VARCHAR(64) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'RECEIVED',
			used_at VARCHAR(50),
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS offline_license_files (
			id VARCHAR(64) PRIMARY KEY,
			offline_request_id VARCHAR(64) NOT NULL,
			license_id VARCHAR(64) NOT NULL,
			file_name VARCHAR(255) NOT NULL,
			payload_json TEXT NOT NULL,
			signature TEXT NOT NULL,
			public_key TEXT NOT NULL,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (offline_request_id) REFERENCES offline_requests(id),
			FOREIGN KEY (license_id) REFERENCES licenses(id)
		)`,

		`CREATE TABLE IF NOT EXISTS activation_attempts (
			id VARCHAR(64) PRIMARY KEY,
			product_id VARCHAR(64) NOT NULL,
			license_id VARCHAR(64),
			license_key VARCHAR(100),
			device_id_hash VARCHAR(64),
			ip VARCHAR(64),
			result VARCHAR(30) NOT NULL,
			reason TEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			setting_key VARCHAR(100) PRIMARY KEY,
			value_json TEXT NOT NULL,
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaults siembra el admin inicial y el setting de revalidación si la
// base está vacía.
func SeedDefaults(db *sql.DB, adminEmail, adminPassword string) error {
	now := utils.FormatDBTime(utils.NowUTC())

	var adminCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&adminCount); err != nil {
		return err
	}
	if adminCount == 0 {
		hash, err := utils.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		_, err = db.Exec(
			`INSERT INTO admins (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			utils.NewID(), adminEmail, "Administrador", hash, models.RoleSuperAdmin, now,
		)
		if err != nil {
			return err
		}
		logger.Info("Seeded initial admin account: %s", adminEmail)
	}

	var settingCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings WHERE setting_key = ?", models.SettingKeyRevalidation).Scan(&settingCount); err != nil {
		return err
	}
	if settingCount == 0 {
		_, err := db.Exec(
			`INSERT INTO settings (setting_key, value_json, updated_at) VALUES (?, ?, ?)`,
			models.SettingKeyRevalidation, `{"offlineDays":7}`, now,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
