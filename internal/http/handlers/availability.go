package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/availability"
)

// AvailabilityHandler serves the unassigned-order discovery endpoint.
type AvailabilityHandler struct {
	usecase availabilityUsecase
	logger  logx.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(logger logx.Logger, uc availabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{usecase: uc, logger: logger}
}

// List handles GET /available-orders. Optional latitude/longitude (lat/lon
// also accepted) enable proximity filtering; vendor_id narrows to a single
// vendor; cursor pages forward.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := availability.Filter{Cursor: q.Get("cursor")}

	if s := q.Get("vendor_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid vendor_id")
			return
		}
		f.VendorID = &v
	}
	if s, name := coordParam(q, "latitude", "lat"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid "+name)
			return
		}
		f.DriverLat = &v
	}
	if s, name := coordParam(q, "longitude", "lon"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid "+name)
			return
		}
		f.DriverLon = &v
	}

	orders, next, err := h.usecase.List(r.Context(), f)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToListResponse(orders, next))
}

// coordParam reads a coordinate that may come under its full or its short
// name. The full name wins when both are present.
func coordParam(q url.Values, names ...string) (string, string) {
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v, n
		}
	}
	return "", names[0]
}
