package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
)

var errInvalidJSON = errors.New("invalid JSON")

// getPathUUID parses the chi path parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handleOwner returns the authenticated owner or writes a 401.
func handleOwner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	ownerID, ok := shared.OwnerIDFromContext(r.Context())
	if !ok {
		log.Warn("owner ID not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return ownerID, true
}

// handleOwnerAndPathUUID returns the authenticated owner and the {id} path
// parameter, writing an error response when either is missing or invalid.
func handleOwnerAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	itemID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid item id", slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, itemID, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		if !errors.Is(err, shared.ErrEmptyBody) {
			err = fmt.Errorf("%w: %w", errInvalidJSON, err)
		}
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// queryPage reads the page query parameter. Missing, malformed and
// non-positive values become 1.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return domain.NormalizePage(page)
}

// queryCount reads the count query parameter, defaulting to def when absent.
func queryCount(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return def, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidCount
	}
	return count, nil
}
