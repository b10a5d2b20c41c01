package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"monitor-precos/internal/models"
	"monitor-precos/internal/stats"
)

const historyColumns = "id, product_id, price, currency, scraped_at, in_stock, raw_html_hash"

// Record grava a observação e, se houver, o alerta da mesma verificação
// numa única transação: ou os dois ficam, ou nenhum. O histórico e os
// alertas nunca são alterados nem apagados.
func (db *DB) Record(ctx context.Context, obs *models.PriceObservation, a *models.Alert) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação do produto %d: %w", obs.ProductID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertObservation(ctx, tx, obs); err != nil {
		return err
	}
	if a != nil {
		if err := insertAlert(ctx, tx, a); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao confirmar verificação do produto %d: %w", obs.ProductID, err)
	}
	return nil
}

func insertObservation(ctx context.Context, tx *sql.Tx, obs *models.PriceObservation) error {
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if obs.ScrapedAt.IsZero() {
		obs.ScrapedAt = time.Now().UTC()
	}
	if obs.Currency == "" {
		obs.Currency = "USD"
	}

	var hash sql.NullString
	if obs.ContentHash != "" {
		hash = sql.NullString{String: obs.ContentHash, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO price_history ("+historyColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		obs.ID, obs.ProductID, obs.Price.StringFixed(2), obs.Currency, obs.ScrapedAt.UnixNano(), obs.InStock, hash,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar histórico do produto %d: %w", obs.ProductID, err)
	}
	return nil
}

// Latest retorna a observação mais recente do produto, ou nil
func (db *DB) Latest(ctx context.Context, productID int64) (*models.PriceObservation, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+historyColumns+" FROM price_history WHERE product_id = ? ORDER BY scraped_at DESC, rowid DESC LIMIT 1",
		productID,
	)
	obs, err := scanObservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

// ByProduct retorna o histórico em ordem crescente de tempo.
// since zero devolve tudo; caso contrário só o que veio depois de since.
func (db *DB) ByProduct(ctx context.Context, productID int64, since time.Time) ([]models.PriceObservation, error) {
	query := "SELECT " + historyColumns + " FROM price_history WHERE product_id = ?"
	args := []any{productID}
	if !since.IsZero() {
		query += " AND scraped_at > ?"
		args = append(args, since.UnixNano())
	}
	query += " ORDER BY scraped_at ASC, rowid ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.PriceObservation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, obs)
	}
	return history, rows.Err()
}

// Stats calcula menor, maior e média do histórico do produto
func (db *DB) Stats(ctx context.Context, productID int64) (models.PriceStats, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT price FROM price_history WHERE product_id = ?", productID)
	if err != nil {
		return models.PriceStats{}, err
	}
	defer rows.Close()

	var prices []decimal.Decimal
	for rows.Next() {
		var p decimal.Decimal
		if err := rows.Scan(&p); err != nil {
			return models.PriceStats{}, err
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return models.PriceStats{}, err
	}
	return stats.SummarizePrices(prices), nil
}

func scanObservation(row rowScanner) (models.PriceObservation, error) {
	var obs models.PriceObservation
	var scrapedAt int64
	var hash sql.NullString
	err := row.Scan(&obs.ID, &obs.ProductID, &obs.Price, &obs.Currency, &scrapedAt, &obs.InStock, &hash)
	if err != nil {
		return obs, err
	}
	obs.ScrapedAt = time.Unix(0, scrapedAt).UTC()
	obs.ContentHash = hash.String
	return obs, nil
}
