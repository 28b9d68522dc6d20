package handlers

import "service-dispatch/internal/domain"

func pointToDTO(p *domain.Point) *pointDTO {
	if p == nil {
		return nil
	}
	return &pointDTO{Lat: p.Lat, Lon: p.Lon}
}

func orderToDTO(o *domain.Order) orderDTO {
	dto := orderDTO{
		ID:            o.ID,
		Status:        o.Status,
		DriverID:      o.DriverID,
		DeliveryFee:   moneyDTO{Amount: o.DeliveryFee.Amount, Currency: o.DeliveryFee.Currency},
		PickupPoint:   pointToDTO(o.PickupPoint),
		DeliveryPoint: pointToDTO(o.DeliveryPoint),
		AssignedAt:    o.AssignedAt,
		PickedUpAt:    o.PickedUpAt,
		DispatchedAt:  o.DispatchedAt,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
	if o.Vendor != nil {
		dto.Vendor = &vendorDTO{
			ID:       o.Vendor.ID,
			Name:     o.Vendor.Name,
			Location: pointToDTO(o.Vendor.Location),
		}
	}
	if o.Customer != nil {
		dto.Customer = &customerDTO{
			ID:    o.Customer.ID,
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
		}
	}
	for _, it := range o.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: moneyDTO{Amount: it.UnitPrice.Amount, Currency: it.UnitPrice.Currency},
		})
	}
	return dto
}

func ordersToListResponse(orders []domain.Order, next string) orderListResponse {
	resp := orderListResponse{Orders: make([]orderDTO, 0, len(orders)), NextCursor: next}
	for i := range orders {
		resp.Orders = append(resp.Orders, orderToDTO(&orders[i]))
	}
	return resp
}
