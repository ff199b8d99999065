// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// Go'da database/sql standart kütüphanesi, farklı veritabanlarına ortak bir
// arayüz (interface) sağlar. SQLite driver import edildiğinde otomatik olarak
// kayıt olur — "blank import" bu yüzden kullanılır: import'un yan etkisi gereklidir.
//
// Migration'lar goose ile yönetilir: her dosya "-- +goose Up" / "-- +goose Down"
// blokları içerir, uygulanan versiyonlar goose_db_version tablosunda tutulur.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver — CGO gerekmez, her platformda çalışır
)

// DB, veritabanı bağlantısını saran struct.
// *sql.DB Go'nun built-in connection pool'udur — thread-safe'dir,
// birden fazla goroutine aynı anda güvenle kullanabilir.
type DB struct {
	Conn *sql.DB
}

// gooseMu, goose'un paket seviyesindeki state'ini (base FS, dialect) korur.
var gooseMu sync.Mutex

// New, yeni bir SQLite bağlantısı oluşturur ve gömülü migration'ları çalıştırır.
//
// dbPath: SQLite dosya yolu (ör: "./data/chronora.db")
func New(ctx context.Context, dbPath string) (*DB, error) {
	// Veritabanı dosyasının bulunduğu dizini oluştur (yoksa)
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// "foreign_keys(1)" → Foreign key constraint'leri aktif et (SQLite'ta varsayılan kapalı!)
	// "journal_mode(WAL)" → Write-Ahead Logging: eşzamanlı okuma/yazma performansı
	// "_time_format=sqlite" → time.Time değerleri "YYYY-MM-DD HH:MM:SS" olarak yazılır,
	// böylece expires_at > ? karşılaştırmaları metin sırasıyla doğru çalışır.
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Str("component", "database").Str("path", dbPath).Msg("connected and migrations applied")
	return db, nil
}

// Close, veritabanı bağlantısını kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// migrate, migrations/ altındaki goose dosyalarını sırayla uygular.
// Zaten uygulanmış versiyonlar atlanır, dolayısıyla her açılışta güvenle çağrılır.
func (db *DB) migrate(ctx context.Context) error {
	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db.Conn, ".")
}

// gooseLogger, goose çıktısını zerolog'a yönlendirir.
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Str("component", "database").Msgf(format, v...)
}

func (gooseLogger) Printf(format string, v ...any) {
	log.Debug().Str("component", "database").Msgf(format, v...)
}
