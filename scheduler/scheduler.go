package scheduler

import (
	"time"

	"fulltechlicense/database"
	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// StartScheduler arranca el barrido periódico de expiración. Corre una vez
// al arrancar y después cada hora.
func StartScheduler() {
	logger.Info("Scheduler started")

	ticker := time.NewTicker(1 * time.Hour)

	UpdateExpiredLicenses()
	UpdateExpiredVouchers()

	go func() {
		for {
			<-ticker.C
			logger.Info("Scheduler tick: expiration sweep")
			UpdateExpiredLicenses()
			UpdateExpiredVouchers()
		}
	}()
}

// UpdateExpiredLicenses pasa a EXPIRED las licencias ACTIVE ya vencidas.
// Es el mismo volcado que hace la activación de forma perezosa; aquí se
// aplica en lote para que el panel no muestre licencias ACTIVE vencidas.
func UpdateExpiredLicenses() {
	nowStr := utils.FormatDBTime(utils.NowUTC())

	result, err := database.DB.Exec(`
		UPDATE licenses
		SET status = ?, updated_at = ?
		WHERE status = ?
		AND expires_at IS NOT NULL
		AND expires_at != ''
		AND expires_at < ?`,
		models.LicenseStatusExpired, nowStr, models.LicenseStatusActive, nowStr,
	)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("Failed to update expired licenses")
		return
	}

	if count, _ := result.RowsAffected(); count > 0 {
		logger.WithFields(map[string]interface{}{
			"count": count,
			"now":   nowStr,
		}).Info("Expired licenses updated")
	}
}

// UpdateExpiredVouchers pasa a EXPIRED los vouchers UNUSED cuyo lote ya
// caducó. Solo UNUSED: USED y CANCELLED son terminales.
func UpdateExpiredVouchers() {
	nowStr := utils.FormatDBTime(utils.NowUTC())

	result, err := database.DB.Exec(`
		UPDATE vouchers
		SET status = ?
		WHERE status = ?
		AND expires_at IS NOT NULL
		AND expires_at != ''
		AND expires_at < ?`,
		models.VoucherStatusExpired, models.VoucherStatusUnused, nowStr,
	)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("Failed to update expired vouchers")
		return
	}

	if count, _ := result.RowsAffected(); count > 0 {
		logger.WithFields(map[string]interface{}{
			"count": count,
			"now":   nowStr,
		}).Info("Expired vouchers updated")
	}
}
