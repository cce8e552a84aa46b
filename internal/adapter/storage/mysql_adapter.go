package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/helados/internal/core/domain"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS helados (
		id INT AUTO_INCREMENT PRIMARY KEY,
		flavor VARCHAR(255) NOT NULL,
		stock_status VARCHAR(255) NOT NULL
	)`

// MySQLAdapter opens a new connection for every call and closes it before
// returning. Nothing is pooled between calls.
type MySQLAdapter struct {
	connector driver.Connector
}

func NewMySQLAdapter(cfg *mysql.Config) (*MySQLAdapter, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return newMySQLAdapter(connector), nil
}

func newMySQLAdapter(connector driver.Connector) *MySQLAdapter {
	return &MySQLAdapter{connector: connector}
}

func (m *MySQLAdapter) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db := sql.OpenDB(m.connector)
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	return m.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	})
}

func (m *MySQLAdapter) CreateHelado(ctx context.Context, helado domain.Helado) (int64, error) {
	var id int64
	err := m.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			`INSERT INTO helados (flavor, stock_status) VALUES (?, ?)`,
			helado.Flavor, helado.StockStatus,
		)
		if err != nil {
			return fmt.Errorf("insert helado: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	return id, err
}

func (m *MySQLAdapter) GetHelado(ctx context.Context, id int64) (*domain.Helado, error) {
	var helado *domain.Helado
	err := m.withConn(ctx, func(conn *sql.Conn) error {
		var h domain.Helado
		var rowID int64
		err := conn.QueryRowContext(ctx, `
			SELECT id, flavor, stock_status
			FROM helados WHERE id = ?`, id,
		).Scan(&rowID, &h.Flavor, &h.StockStatus)

		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query helado: %w", err)
		}

		h.ID = &rowID
		helado = &h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return helado, nil
}

func (m *MySQLAdapter) ListHelados(ctx context.Context) ([]domain.Helado, error) {
	helados := []domain.Helado{}
	err := m.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, flavor, stock_status FROM helados ORDER BY id`)
		if err != nil {
			return fmt.Errorf("query helados: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var h domain.Helado
			var rowID int64
			if err := rows.Scan(&rowID, &h.Flavor, &h.StockStatus); err != nil {
				return fmt.Errorf("scan helado: %w", err)
			}
			h.ID = &rowID
			helados = append(helados, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return helados, nil
}

func (m *MySQLAdapter) UpdateHelado(ctx context.Context, id int64, helado domain.Helado) error {
	return m.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, `
			UPDATE helados
			SET flavor = ?, stock_status = ?
			WHERE id = ?`,
			helado.Flavor, helado.StockStatus, id,
		)
		if err != nil {
			return fmt.Errorf("update helado: %w", err)
		}
		return nil
	})
}

func (m *MySQLAdapter) DeleteHelado(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := m.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM helados WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete helado: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	return deleted, err
}
