package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/logx"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
	}
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeErrorCode(logger, w, r, status, msg, "")
}

func writeErrorCode(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	logger.Info("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, errResponse{Error: msg, Code: code})
}

// writeDomainError maps service sentinel errors onto HTTP statuses. State and
// location failures get 422 with a machine-readable code so driver apps can
// render specific guidance.
func writeDomainError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrConflict):
		writeErrorCode(logger, w, r, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, apperr.ErrInvalidState):
		writeErrorCode(logger, w, r, http.StatusUnprocessableEntity, err.Error(), "invalid_state")
	case errors.Is(err, apperr.ErrGeofence):
		writeErrorCode(logger, w, r, http.StatusUnprocessableEntity, err.Error(), "geofence_violation")
	case errors.Is(err, apperr.ErrOtpMismatch):
		writeErrorCode(logger, w, r, http.StatusUnprocessableEntity, err.Error(), "otp_mismatch")
	case errors.Is(err, apperr.ErrLocationMissing):
		writeErrorCode(logger, w, r, http.StatusUnprocessableEntity, err.Error(), "location_missing")
	case errors.Is(err, apperr.ErrCoordsMissing):
		writeErrorCode(logger, w, r, http.StatusUnprocessableEntity, err.Error(), "coordinates_missing")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(logger, w, r, http.StatusBadRequest, err.Error())
	default:
		logger.Error("internal error",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
		writeError(logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

const (
	bodyLimit = 1 << 20

	driverHeader = "X-Driver-ID"
	vendorHeader = "X-Vendor-ID"
)

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// driverFromHeader reads the authenticated driver id propagated by the API
// gateway. Authentication itself happens upstream.
func driverFromHeader(r *http.Request) (int64, error) {
	return idFromHeader(r, driverHeader)
}

func vendorFromHeader(r *http.Request) (int64, error) {
	return idFromHeader(r, vendorHeader)
}

func idFromHeader(r *http.Request, name string) (int64, error) {
	raw := r.Header.Get(name)
	if raw == "" {
		return 0, errors.New("missing " + name + " header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name + " header")
	}
	return id, nil
}
