package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kwameboadi/adepa-backend/api/middleware"
	"github.com/kwameboadi/adepa-backend/api/validators"
	"github.com/kwameboadi/adepa-backend/pkg/pagination"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

// authedUserID reads the authenticated user id seeded by the auth middleware.
func authedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject")
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
