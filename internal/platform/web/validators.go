package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// Gte accepts values greater than or equal to lo.
func Gte(lo int64) ParamValidator {
	return func(v int64) bool { return v >= lo }
}

// Between accepts values in [lo, hi].
func Between(lo, hi int64) ParamValidator {
	return func(v int64) bool { return v >= lo && v <= hi }
}

// QueryInt64 parses an optional integer query parameter. An absent parameter yields def.
// An unparsable or rejected value writes a 400 response and returns false.
func QueryInt64(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, def int64, check ParamValidator) (int64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || (check != nil && !check(v)) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return v, true
}
