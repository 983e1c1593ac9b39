package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrCapacity      = errors.New("quest is full")
	ErrQuotaExceeded = errors.New("free accounts can create one quest every 24 hours, upgrade to premium for unlimited quests")
	ErrForbidden     = errors.New("forbidden")
	ErrUnavailable   = errors.New("feature unavailable")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct's `validate` tags and folds failures into ErrValidation.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return validationErr("%s", strings.Join(msgs, "; "))
}

// translateQuestErr maps store level outcomes onto the service taxonomy.
func translateQuestErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrQuestUnavailable):
		return fmt.Errorf("%w: quest is no longer available", ErrNotFound)
	case errors.Is(err, repo.ErrCreatorJoin):
		return fmt.Errorf("%w: you created this quest", ErrConflict)
	case errors.Is(err, repo.ErrAlreadyMember):
		return fmt.Errorf("%w: already joined this quest", ErrConflict)
	case errors.Is(err, repo.ErrQuestFull):
		return ErrCapacity
	case errors.Is(err, repo.ErrNotMember):
		return fmt.Errorf("%w: not a participant of this quest", ErrNotFound)
	case errors.Is(err, repo.ErrQuotaExceeded):
		return ErrQuotaExceeded
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case repo.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
