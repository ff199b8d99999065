// Package database — Transaction yönetimi.
//
// WithTx, birden fazla DB operasyonunun atomik (all-or-nothing) çalışmasını sağlar.
// Post silme (yorumlar + beğeniler + post) ve yorum ağacı silme bu helper'ı kullanır.
//
// Kullanım:
//
//	err := database.WithTx(ctx, r.db, func(tx database.TxQuerier) error {
//	    if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", id); err != nil {
//	        return err  // → ROLLBACK
//	    }
//	    _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
//	    return err      // nil → COMMIT
//	})
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından karşılanan interface.
//
// Repository'ler bu interface'i dependency olarak alır:
// normal operasyonlarda *sql.DB, transaction içinde *sql.Tx geçilebilir.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner, transaction başlatabilen bağlantı (*sql.DB).
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx, verilen fonksiyonu bir SQL transaction içinde çalıştırır.
//
// db zaten bir *sql.Tx ise (iç içe çağrı) yeni transaction açılmaz,
// fn mevcut transaction ile çağrılır — commit/rollback dış çağrıya aittir.
//
// fn error dönerse veya panic atarsa ROLLBACK yapılır; panic tekrar fırlatılır.
func WithTx(ctx context.Context, db TxQuerier, fn func(tx TxQuerier) error) (err error) {
	if tx, ok := db.(*sql.Tx); ok {
		return fn(tx)
	}

	beginner, ok := db.(TxBeginner)
	if !ok {
		return fmt.Errorf("querier %T cannot begin transactions", db)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
