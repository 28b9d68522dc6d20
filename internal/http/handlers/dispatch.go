package handlers

import (
	"net/http"

	"service-dispatch/internal/logx"
)

// DispatchHandler serves the driver-facing order lifecycle endpoints.
type DispatchHandler struct {
	usecase dispatchUsecase
	logger  logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, uc dispatchUsecase) *DispatchHandler {
	return &DispatchHandler{usecase: uc, logger: logger}
}

func (h *DispatchHandler) ids(w http.ResponseWriter, r *http.Request) (driverID, orderID int64, ok bool) {
	driverID, err := driverFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, err.Error())
		return 0, 0, false
	}
	orderID, err = idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return 0, 0, false
	}
	return driverID, orderID, true
}

// Accept handles POST /orders/{id}/accept.
func (h *DispatchHandler) Accept(w http.ResponseWriter, r *http.Request) {
	driverID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	o, err := h.usecase.Accept(r.Context(), driverID, orderID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}

// Reject handles POST /orders/{id}/reject. The order returns to the unassigned
// pool; its status is untouched.
func (h *DispatchHandler) Reject(w http.ResponseWriter, r *http.Request) {
	driverID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if r.ContentLength > 0 {
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
	}

	if err := h.usecase.Reject(r.Context(), driverID, orderID, req.Reason); err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// PickUp handles POST /orders/{id}/pickup.
func (h *DispatchHandler) PickUp(w http.ResponseWriter, r *http.Request) {
	driverID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	o, err := h.usecase.MarkPickedUp(r.Context(), driverID, orderID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}

// StartDelivery handles POST /orders/{id}/start-delivery.
func (h *DispatchHandler) StartDelivery(w http.ResponseWriter, r *http.Request) {
	driverID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	o, err := h.usecase.StartDelivery(r.Context(), driverID, orderID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}

// Deliver handles POST /orders/{id}/deliver.
func (h *DispatchHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	driverID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var req deliverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.usecase.Deliver(r.Context(), driverID, orderID, req.OTP)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}

// Active handles GET /orders/active.
func (h *DispatchHandler) Active(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, err.Error())
		return
	}

	o, err := h.usecase.Active(r.Context(), driverID)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	if o == nil {
		writeError(h.logger, w, r, http.StatusNotFound, "no active order")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}

// History handles GET /orders/history.
func (h *DispatchHandler) History(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, err.Error())
		return
	}

	orders, next, err := h.usecase.History(r.Context(), driverID, r.URL.Query().Get("cursor"))
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToListResponse(orders, next))
}
