// Package main — Repository katmanı başlatma.
//
// initRepositories, DATABASE_DRIVER'a göre SQLite veya MongoDB
// implementasyonlarını oluşturur. Service katmanı sadece interface'leri görür;
// hangi backend'in seçildiğini bilmez.
package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/config"
	"github.com/akinalp/chronora/database"
	"github.com/akinalp/chronora/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı ayrı repository değişkenleri yerine tek struct kullanmak:
// 1. Fonksiyon imzalarını temiz tutar
// 2. Yeni repository eklendiğinde sadece struct + init fonksiyonları güncellenir
type Repositories struct {
	User       repository.UserRepository
	Session    repository.SessionRepository
	ResetToken repository.PasswordResetRepository
	Post       repository.PostRepository
	Comment    repository.CommentRepository
}

// closeFunc, seçilen veritabanı bağlantısını kapatır.
type closeFunc func(context.Context) error

// initRepositories, config'teki driver'a göre bağlanır ve repository'leri oluşturur.
func initRepositories(ctx context.Context, cfg *config.Config) (*Repositories, closeFunc, error) {
	switch cfg.Database.Driver {
	case "mongo":
		m, err := database.NewMongo(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return newMongoRepositories(m), m.Close, nil

	case "sqlite":
		db, err := database.New(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("component", "database").Str("path", cfg.Database.Path).Msg("sqlite ready")
		return newSQLiteRepositories(db), func(context.Context) error { return db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// newSQLiteRepositories — her NewSQLite* fonksiyonu aynı *sql.DB'yi alır.
// Go'nun sql.DB'si thread-safe connection pool'dur, paylaşılması güvenlidir.
func newSQLiteRepositories(db *database.DB) *Repositories {
	return &Repositories{
		User:       repository.NewSQLiteUserRepo(db.Conn),
		Session:    repository.NewSQLiteSessionRepo(db.Conn),
		ResetToken: repository.NewSQLiteResetTokenRepo(db.Conn),
		Post:       repository.NewSQLitePostRepo(db.Conn),
		Comment:    repository.NewSQLiteCommentRepo(db.Conn),
	}
}

func newMongoRepositories(m *database.Mongo) *Repositories {
	return &Repositories{
		User:       repository.NewMongoUserRepo(m.DB),
		Session:    repository.NewMongoSessionRepo(m.DB),
		ResetToken: repository.NewMongoResetTokenRepo(m.DB),
		Post:       repository.NewMongoPostRepo(m.DB),
		Comment:    repository.NewMongoCommentRepo(m.DB),
	}
}
