package server

import (
	"errors"
	"net/http"

	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
)

type operation string

const (
	opCreate operation = "create"
	opList   operation = "list"
	opGet    operation = "get"
	opUpdate operation = "update"
	opDelete operation = "delete"
)

// statusFor maps a store error to an HTTP status. Malformed ids read as
// missing on GET but as bad requests on PUT and DELETE, and any other
// delete failure is a 400, which is what existing clients expect.
func statusFor(op operation, err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidID):
		if op == opGet {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case op == opDelete:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
