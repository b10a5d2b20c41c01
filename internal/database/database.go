package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"monitor-precos/internal/logger"
	"monitor-precos/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn   *sql.DB
	logger logger.Logger
}

// New abre (ou cria) o banco SQLite e garante o schema
func New(dbPath string, log logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite só aceita um escritor por vez
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: log}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("banco de dados inicializado", logger.String("path", dbPath))
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		name TEXT,
		retailer TEXT,
		target_price TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS price_history (
		id TEXT PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES products(id),
		price TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		scraped_at INTEGER NOT NULL,
		in_stock BOOLEAN NOT NULL DEFAULT 1,
		raw_html_hash TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id, scraped_at);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES products(id),
		triggered_price TEXT NOT NULL,
		triggered_at INTEGER NOT NULL,
		notification_sent BOOLEAN NOT NULL DEFAULT 0,
		alert_type TEXT NOT NULL DEFAULT 'PRICE_DROP'
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_product ON alerts(product_id, triggered_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("erro ao criar schema: %w", err)
	}
	return nil
}

const productColumns = "id, url, name, retailer, target_price, active, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var name, retailer sql.NullString
	var createdAt sql.NullTime
	err := row.Scan(&p.ID, &p.URL, &name, &retailer, &p.TargetPrice, &p.Active, &createdAt)
	if err != nil {
		return p, err
	}
	p.Name = name.String
	p.Retailer = retailer.String
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return p, nil
}

func targetValue(target decimal.NullDecimal) any {
	if !target.Valid {
		return nil
	}
	return target.Decimal.StringFixed(2)
}

// ErrAlreadyMonitored indica que a URL já pertence a um produto ativo
var ErrAlreadyMonitored = errors.New("produto já está sendo monitorado")

// AddProduct adiciona um novo produto e devolve o ID gerado.
// Um produto removido com a mesma URL é reativado com os novos dados,
// mantendo o ID e o histórico.
func (db *DB) AddProduct(ctx context.Context, url, name, retailer string, target decimal.NullDecimal) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO products (url, name, retailer, target_price, active) VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			retailer = excluded.retailer,
			target_price = excluded.target_price,
			active = 1
		WHERE products.active = 0
		RETURNING id`,
		url, name, retailer, targetValue(target),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAlreadyMonitored
	}
	if err != nil {
		return 0, fmt.Errorf("erro ao adicionar produto: %w", err)
	}
	return id, nil
}

// ListActive retorna os produtos ativos na ordem de cadastro
func (db *DB) ListActive(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE active = 1 ORDER BY id")
}

// ListProducts retorna todos os produtos (ativos e inativos)
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at DESC, id DESC")
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByID retorna um produto pelo ID, ou nil se ele não existe
func (db *DB) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateTargetPrice troca (ou remove) o preço alvo de um produto
func (db *DB) UpdateTargetPrice(ctx context.Context, id int64, target decimal.NullDecimal) error {
	_, err := db.conn.ExecContext(ctx, "UPDATE products SET target_price = ? WHERE id = ?", targetValue(target), id)
	return err
}

// DeactivateProduct desativa um produto
func (db *DB) DeactivateProduct(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, "UPDATE products SET active = 0 WHERE id = ?", id)
	return err
}
