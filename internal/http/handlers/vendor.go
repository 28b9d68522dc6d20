package handlers

import (
	"net/http"
	"strings"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// VendorHandler serves vendor-side order status changes.
type VendorHandler struct {
	usecase vendorUsecase
	logger  logx.Logger
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(logger logx.Logger, uc vendorUsecase) *VendorHandler {
	return &VendorHandler{usecase: uc, logger: logger}
}

// ChangeStatus handles POST /orders/{id}/vendor-status.
func (h *VendorHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, err.Error())
		return
	}
	orderID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	var req vendorStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	target := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	o, err := h.usecase.Change(r.Context(), vendorID, orderID, target)
	if err != nil {
		writeDomainError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToDTO(o))
}
