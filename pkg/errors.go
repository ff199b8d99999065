// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
	ErrUnavailable   = errors.New("service unavailable")
)

// Oturum/token katmanının error'ları.
//
// ErrInvalidToken imza, format ve süre hatalarının HEPSİ için tek değerdir —
// çağıran taraf hangi kontrolün başarısız olduğunu ayırt edemez (ve etmemeli).
// ErrInvalidSession ve ErrUserNotFound auth middleware içinde "anonim" olarak
// yutulur, route handler'lara hiç ulaşmaz.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
)
