package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/models"
	"ridership.subwaydash.org/internal/ridership"
)

func (api *RestAPI) clock() clock.Clock {
	if api.Application == nil || api.Clock == nil {
		return clock.RealClock{}
	}
	return api.Clock
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(&w)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusNotFound, "resource not found")
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	setJSONResponseType(&w)
	w.WriteHeader(code)

	response := models.ResponseModel{
		Code:        code,
		CurrentTime: models.ResponseCurrentTime(api.clock()),
		Text:        message,
		Version:     models.ResponseVersion,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.logger(r), "failed to encode error response", err)
	}
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.sendError(w, r, http.StatusBadRequest, err.Error())
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.logger(r), "request failed", err, logRequestAttrs(r)...)
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

// runErrorResponse maps a failed pipeline run to a response. A dataset that
// lacks columns is a data problem rather than a server fault.
func (api *RestAPI) runErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var missing *ridership.MissingColumnError
	if errors.As(err, &missing) {
		logging.LogError(api.logger(r), "dataset cannot produce output", err)
		api.sendError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	api.serverErrorResponse(w, r, err)
}
