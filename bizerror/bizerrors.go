package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidCredentials   = errors.New("Invalid email or password")
	ErrForbidden            = errors.New("forbidden")
	ErrEmailExists          = errors.New("Email already exists")
	ErrInvalidResetToken    = errors.New("Invalid or expired reset token")
	ErrSigningSecretMissing = errors.New("token signing secret is not configured")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

type ErrNotFound struct {
	Cause error
}

func (e *ErrNotFound) Unwrap() error {
	return e.Cause
}
func (e *ErrNotFound) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "record not found"
}
func (e *ErrNotFound) Respond() *BizErrorDetail {
	message := "record not found"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusNotFound, Code: "common.record_not_found", Message: message, Data: nil}
}
