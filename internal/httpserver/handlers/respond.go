package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jodli/Vereinsknete/internal/apperr"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type apiError struct {
	Error  string `json:"error"`
	Status string `json:"status"`
	Code   string `json:"code"`
}

// respondError maps an application error onto the JSON error envelope.
// Internal causes are logged but never exposed to the caller.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		lg.Errorw("internal error", "error", err)
		msg = "internal server error"
	}
	respondJSON(w, apperr.HTTPStatus(kind), apiError{
		Error:  msg,
		Status: "error",
		Code:   apperr.Code(kind),
	})
}
