package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/toyhub/storefront/internal/domain/order"
)

// statusEnvelope is the shape of every failure response and of confirmation
// responses that carry no entity.
type statusEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// orderItemDTO mirrors the persisted item on the wire. Product is present
// only on nested fetches.
type orderItemDTO struct {
	ID        string      `json:"id"`
	Product   *productDTO `json:"product,omitempty"`
	ProductID string      `json:"productId,omitempty"`
	Quantity  int         `json:"quantity"`
	UnitPrice float64     `json:"unitPrice"`
}

type productDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    float64      `json:"price"`
	Category *categoryDTO `json:"category,omitempty"`
}

type categoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

type userDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type orderDTO struct {
	ID               string         `json:"id"`
	OrderItems       []orderItemDTO `json:"orderItems,omitempty"`
	ShippingAddress1 string         `json:"shippingAddress1"`
	ShippingAddress2 string         `json:"shippingAddress2,omitempty"`
	City             string         `json:"city"`
	Zip              string         `json:"zip"`
	Country          string         `json:"country"`
	Phone            string         `json:"phone"`
	Status           string         `json:"status"`
	TotalPrice       float64        `json:"totalPrice"`
	User             userDTO        `json:"user"`
	DateOrdered      time.Time      `json:"dateOrdered"`
}

func toOrderDTO(o *order.Order) orderDTO {
	dto := orderDTO{
		ID:               o.ID,
		ShippingAddress1: o.Shipping.Address1,
		ShippingAddress2: o.Shipping.Address2,
		City:             o.Shipping.City,
		Zip:              o.Shipping.Zip,
		Country:          o.Shipping.Country,
		Phone:            o.Shipping.Phone,
		Status:           o.Status,
		TotalPrice:       o.TotalPrice.InexactFloat64(),
		User:             userDTO{ID: o.UserID, Name: o.UserName},
		DateOrdered:      o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.OrderItems = append(dto.OrderItems, toItemDTO(item))
	}
	return dto
}

func toItemDTO(item order.Item) orderItemDTO {
	dto := orderItemDTO{
		ID:        item.ID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.InexactFloat64(),
	}
	if item.Product != nil {
		dto.Product = &productDTO{
			ID:    item.Product.ID,
			Name:  item.Product.Name,
			Price: item.Product.Price.InexactFloat64(),
			Category: &categoryDTO{
				ID:    item.Product.Category.ID,
				Name:  item.Product.Category.Name,
				Icon:  item.Product.Category.Icon,
				Color: item.Product.Category.Color,
			},
		}
	} else {
		dto.ProductID = item.ProductID
	}
	return dto
}

func toOrderListDTO(orders []order.Order) []orderDTO {
	out := make([]orderDTO, len(orders))
	for i := range orders {
		out[i] = toOrderDTO(&orders[i])
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, statusEnvelope{Success: false, Message: message})
}
