package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"monitor-precos/internal/models"
)

const alertColumns = "id, product_id, triggered_price, triggered_at, notification_sent, alert_type"

func insertAlert(ctx context.Context, tx *sql.Tx, a *models.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	if a.Type == "" {
		a.Type = models.AlertTypePriceDrop
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO alerts ("+alertColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.ProductID, a.TriggeredPrice.StringFixed(2), a.TriggeredAt.UnixNano(), a.NotificationSent, a.Type,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar alerta do produto %d: %w", a.ProductID, err)
	}
	return nil
}

// UnsentAlerts lista os alertas cuja notificação falhou, do mais antigo ao mais novo
func (db *DB) UnsentAlerts(ctx context.Context) ([]models.Alert, error) {
	return db.queryAlerts(ctx,
		"SELECT "+alertColumns+" FROM alerts WHERE notification_sent = 0 ORDER BY triggered_at ASC")
}

// AlertsByProduct lista os alertas de um produto, do mais novo ao mais antigo
func (db *DB) AlertsByProduct(ctx context.Context, productID int64) ([]models.Alert, error) {
	return db.queryAlerts(ctx,
		"SELECT "+alertColumns+" FROM alerts WHERE product_id = ? ORDER BY triggered_at DESC", productID)
}

func (db *DB) queryAlerts(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var triggeredAt int64
		if err := rows.Scan(&a.ID, &a.ProductID, &a.TriggeredPrice, &triggeredAt, &a.NotificationSent, &a.Type); err != nil {
			return nil, err
		}
		a.TriggeredAt = time.Unix(0, triggeredAt).UTC()
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
