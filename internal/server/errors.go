package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/outreach-architect/internal/db"
)

// httpStatusFor maps storage errors to HTTP status codes.
func httpStatusFor(err error) int {
	var notFound *db.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var duplicate *db.DuplicateError
	if errors.As(err, &duplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
