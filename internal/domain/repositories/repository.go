package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound é retornado quando o registro solicitado não existe
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate é retornado quando uma restrição de unicidade é violada
	ErrDuplicate = errors.New("duplicate record")
)

// isUniqueViolation cobre o erro traduzido pelo gorm e o código 23505 do postgres
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
