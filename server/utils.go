package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"socialfeed/storage"
	"socialfeed/utils"
)

func sendError(w http.ResponseWriter, errorCode int, message string) {
	log.Info(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorCode)
	resp := map[string]string{
		"error": message,
	}
	jsonResp := utils.ToJson(resp)
	w.Write(jsonResp)
}

func sendJson(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(utils.ToJson(value))
}

// sendEngineError maps the error taxonomy onto HTTP statuses.
func (s *Server) sendEngineError(w http.ResponseWriter, err error) {
	sendError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	var duplicate *storage.DuplicateIdentityError
	var validation *storage.ValidationError
	switch {
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotAuthenticated),
		errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrSelfReference):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJson(r *http.Request, value any) error {
	return json.NewDecoder(r.Body).Decode(value)
}

func getQueryItem(values url.Values, key string) string {
	value := values[key]
	if len(value) == 1 {
		return value[0]
	}
	return ""
}
