package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/mailkey/internal/observability/logger"
)

// WriteError serializa un AppError como JSON y setea el status correspondiente.
// La causa original se loguea pero nunca viaja al cliente.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	log := logger.From(r.Context())
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("code", appErr.Code),
			logger.Status(appErr.HTTPStatus),
			logger.Err(appErr.Err),
		)
	} else {
		log.Warn("request rejected",
			logger.String("code", appErr.Code),
			logger.Status(appErr.HTTPStatus),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
