package defs

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	code   int
	detail string
	err    error
}

func newAPIError(code int) *APIError {
	return &APIError{
		code:   code,
		detail: http.StatusText(code),
	}
}

func ErrBadRequest() *APIError {
	return newAPIError(http.StatusBadRequest)
}

func ErrNotFound() *APIError {
	return newAPIError(http.StatusNotFound)
}

func ErrConflict() *APIError {
	return newAPIError(http.StatusConflict)
}

func ErrInternal() *APIError {
	return newAPIError(http.StatusInternalServerError)
}

func (e *APIError) WithDetail(detail string) *APIError {
	e.detail = detail
	return e
}

func (e *APIError) Wrap(err error) *APIError {
	e.err = err
	return e
}

func (e *APIError) Code() int {
	return e.code
}

// APIError returns the status code and the detail to be sent to the caller
func (e *APIError) APIError() (int, string) {
	return e.code, e.detail
}

func (e *APIError) Error() string {
	if e.err != nil {
		return e.detail + ": " + e.err.Error()
	}

	return e.detail
}

func (e *APIError) Unwrap() error {
	return e.err
}

func (e *APIError) JSON() []byte {
	data, _ := json.Marshal(struct {
		Code   int    `json:"code"`
		Detail string `json:"detail"`
	}{
		Code:   e.code,
		Detail: e.detail,
	})

	return data
}
