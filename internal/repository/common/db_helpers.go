package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// GetByID читает строку таблицы по первичному ключу id.
func GetByID[T any](ctx context.Context, db sqlx.QueryerContext, table string, id interface{}) (*T, error) {
	return GetByField[T](ctx, db, table, "id", id)
}

// GetByField читает одну строку по значению поля. Отсутствие строки
// возвращается как ErrNotFound с именем таблицы.
func GetByField[T any](ctx context.Context, db sqlx.QueryerContext, table, field string, value interface{}) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", table, field)

	if err := sqlx.GetContext(ctx, db, &entity, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", table, ErrNotFound)
		}
		return nil, fmt.Errorf("get by %s from %s: %w", field, table, err)
	}

	return &entity, nil
}

// TxBeginner - то, что умеет открывать транзакцию (*sqlx.DB, *sqlx.Conn).
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// WithTransaction выполняет fn в транзакции: коммит при успехе, откат при
// ошибке или панике. Ошибка отката добавляется к ошибке fn.
func WithTransaction(ctx context.Context, db TxBeginner, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("repository: откат транзакции: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: не удалось зафиксировать транзакцию: %w", err)
	}
	return nil
}

// IsUniqueViolation сообщает, нарушено ли ограничение уникальности PostgreSQL.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ExpectAffected возвращает ErrNotFound, если запрос не затронул ни одной строки.
func ExpectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
