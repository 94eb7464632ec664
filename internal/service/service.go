package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/repo"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 409
	ErrForbidden          = errors.New("forbidden")           // 403
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
)

// Message strips the sentinel prefix so handlers can show the detail.
func Message(err error) string {
	var d *detailed
	if errors.As(err, &d) {
		return d.msg
	}
	return err.Error()
}

type detailed struct {
	kind error
	msg  string
}

func (d *detailed) Error() string { return d.kind.Error() + ": " + d.msg }
func (d *detailed) Unwrap() error { return d.kind }

func fail(kind error, format string, args ...any) error {
	return &detailed{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// fromRepo turns repository sentinels into service ones and leaves other
// errors untouched.
func fromRepo(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, repo.ErrNotFound):
		return fail(ErrNotFound, format, args...)
	case errors.Is(err, repo.ErrConflict):
		return fail(ErrConflict, format, args...)
	}
	return err
}

func newID() string { return uuid.NewString() }

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock()
}
