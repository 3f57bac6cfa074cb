package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartmodel "storefront/pkg/cart/domain/model"
	catalogmodel "storefront/pkg/catalog/domain/model"
	"storefront/pkg/common/domain"
	noticemodel "storefront/pkg/notification/domain/model"
	ordermodel "storefront/pkg/order/domain/model"
	usermodel "storefront/pkg/user/domain/model"
)

// money renders as a JSON number with two fractional digits.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(domain.Money(decimal.Decimal(m))), nil
}

type productResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          money     `json:"price"`
	Discount       money     `json:"discount"`
	EffectivePrice money     `json:"effectivePrice"`
	Category       string    `json:"category"`
	Image          string    `json:"image"`
	Stock          int       `json:"stock"`
	Sizes          []string  `json:"sizes"`
	Colors         []string  `json:"colors"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toProductResponse(p *catalogmodel.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          money(p.Price),
		Discount:       money(p.Discount),
		EffectivePrice: money(p.EffectivePrice()),
		Category:       string(p.Category),
		Image:          p.Image,
		Stock:          p.Stock,
		Sizes:          nonNil(p.Sizes),
		Colors:         nonNil(p.Colors),
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type cartLineResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	Size           string    `json:"size"`
	Color          string    `json:"color"`
	Price          money     `json:"price"`
	Discount       money     `json:"discount"`
	EffectivePrice money     `json:"effectivePrice"`
	Quantity       int       `json:"quantity"`
	Stock          int       `json:"stock"`
	Subtotal       money     `json:"subtotal"`
}

type cartResponse struct {
	Lines  []cartLineResponse  `json:"lines"`
	Count  int                 `json:"count"`
	Total  money               `json:"total"`
	Notice *noticemodel.Notice `json:"notice,omitempty"`
}

func toCartResponse(c *cartmodel.Cart, notice noticemodel.Notice) cartResponse {
	lines := make([]cartLineResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, cartLineResponse{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Image:          line.Image,
			Size:           line.Size,
			Color:          line.Color,
			Price:          money(line.UnitPrice),
			Discount:       money(line.Discount),
			EffectivePrice: money(line.EffectivePrice()),
			Quantity:       line.Quantity,
			Stock:          line.StockCeiling,
			Subtotal:       money(line.Subtotal()),
		})
	}
	resp := cartResponse{Lines: lines, Count: c.Count(), Total: money(c.Total())}
	if notice.Message != "" {
		resp.Notice = &notice
	}
	return resp
}

type shippingAddressJSON struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type orderItemResponse struct {
	ProductID uuid.UUID `json:"product"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Price     money     `json:"price"`
	Quantity  int       `json:"qty"`
}

type paymentResultJSON struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	User            uuid.UUID           `json:"user"`
	OrderItems      []orderItemResponse `json:"orderItems"`
	ShippingAddress shippingAddressJSON `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	PaymentResult   *paymentResultJSON  `json:"paymentResult,omitempty"`
	ItemsPrice      money               `json:"itemsPrice"`
	TaxPrice        money               `json:"taxPrice"`
	ShippingPrice   money               `json:"shippingPrice"`
	TotalPrice      money               `json:"totalPrice"`
	OrderStatus     string              `json:"orderStatus"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *ordermodel.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Size:      item.Size,
			Color:     item.Color,
			Price:     money(item.UnitPrice),
			Quantity:  item.Quantity,
		})
	}
	resp := orderResponse{
		ID:         o.ID,
		User:       o.CustomerID,
		OrderItems: items,
		ShippingAddress: shippingAddressJSON{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: o.PaymentStatus,
		IsPaid:        o.IsPaid(),
		PaidAt:        o.PaidAt,
		ItemsPrice:    money(o.ItemsPrice),
		TaxPrice:      money(o.TaxPrice),
		ShippingPrice: money(o.ShippingPrice),
		TotalPrice:    money(o.TotalPrice),
		OrderStatus:   o.FulfillmentState.String(),
		IsDelivered:   o.IsDelivered(),
		DeliveredAt:   o.DeliveredAt,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.PaymentResult != nil {
		resp.PaymentResult = &paymentResultJSON{
			ID:           o.PaymentResult.TransactionID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.PayerEmail,
		}
	}
	return resp
}

func toOrderResponses(orders []ordermodel.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

type userResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Token   string    `json:"token,omitempty"`
}

func toUserResponse(u *usermodel.User, token string) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, Token: token}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
