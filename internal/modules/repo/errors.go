package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrQuestUnavailable = errors.New("quest is not available")
	ErrCreatorJoin      = errors.New("creator cannot join their own quest")
	ErrAlreadyMember    = errors.New("already a participant")
	ErrQuestFull        = errors.New("quest is full")
	ErrNotMember        = errors.New("not a participant")
	ErrQuotaExceeded    = errors.New("quest creation quota exceeded")
	ErrDuplicate        = errors.New("duplicate record")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
