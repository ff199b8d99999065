// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/chronora/config"
	"github.com/akinalp/chronora/handlers"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	AI      *handlers.AIHandler
}

// initHandlers, tüm handler'ları service dependency'leri ile oluşturur.
func initHandlers(svcs *Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth, svcs.Sessions, svcs.Cookies),
		User:    handlers.NewUserHandler(svcs.User, svcs.Sessions, cfg.Upload.MaxSize),
		Post:    handlers.NewPostHandler(svcs.Post, cfg.Upload.MaxSize),
		Comment: handlers.NewCommentHandler(svcs.Comment),
		AI:      handlers.NewAIHandler(svcs.AI),
	}
}
