package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "portal/internal/api/context"
	"portal/internal/pkg/errors"
	"portal/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

// writeInputError answers 400 with the rejected fields when err is a
// validation failure and reports whether it did.
func writeInputError(w http.ResponseWriter, err error) bool {
	var verr *validator.ValidationError
	if !stderrors.As(err, &verr) {
		return false
	}
	errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid input", verr.Fields)
	return true
}
