package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/eventregistry/server/internal/api/envelope"
	"github.com/eventregistry/server/internal/validation"
)

// intParam extracts an integer path parameter. Non-integer values get a 400
// envelope with a field error; integers that match no row fall through to
// the storage lookup and its 404.
func intParam(w http.ResponseWriter, r *http.Request, name, env string) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fe := validation.FieldError{Field: name, Message: "must be an integer"}
		envelope.Fail(w, r, http.StatusBadRequest, "Validation failed", fe, env,
			envelope.WithFieldErrors([]validation.FieldError{fe}))
		return 0, false
	}
	return value, true
}
