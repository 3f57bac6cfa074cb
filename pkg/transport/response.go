package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
)

var (
	errMalformedBody = domain.Validation("malformed request body")
	errInvalidID     = domain.Validation("invalid id")
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		log.WithError(err).Error("encode response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		log.WithField("err", err).Error("write response status")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrConflict, http.StatusConflict},
}

// writeError maps domain error kinds to status codes. Anything unclassified is logged and hidden.
func writeError(w http.ResponseWriter, err error) {
	for _, entry := range statusByKind {
		if !errors.Is(err, entry.kind) {
			continue
		}
		message := err.Error()
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			message = domainErr.Message
		}
		writeMessage(w, entry.status, message)
		return
	}
	log.WithError(err).Error("request failed")
	writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := decoder.Decode(v); err != nil {
		log.WithError(err).Debug("malformed request body")
		return errMalformedBody
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
