package transport

import (
	"net/http"

	checkoutservice "storefront/pkg/checkout/application/service"
	ordermodel "storefront/pkg/order/domain/model"
	orderservice "storefront/pkg/order/domain/service"
)

type placeOrderRequest struct {
	ShippingAddress shippingAddressJSON `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
}

type orderMessageResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

// placeOrder checks out the signed-in shopper's cart, including a guest cart still named by X-Cart-Session.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	principal, err := requireSignIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.services.Checkout.Checkout(r.Context(), principal, checkoutservice.CheckoutInput{
		SessionID: session,
		ShippingAddress: ordermodel.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: ordermodel.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderMessageResponse{"Order created successfully", toOrderResponse(order)})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.services.Orders.ListOrders(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.services.Orders.ListCustomerOrders(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.services.Orders.FindOrder(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentResultJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.services.Orders.MarkOrderAsPaid(r.Context(), principalFrom(r), id, orderservice.PaymentConfirmation{
		TransactionID: req.ID,
		Status:        req.Status,
		UpdateTime:    req.UpdateTime,
		PayerEmail:    req.EmailAddress,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderMessageResponse{"Order marked as paid", toOrderResponse(order)})
}

func (h *Handler) deliverOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.services.Checkout.DeliverOrder(r.Context(), principalFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderMessageResponse{"Order marked as delivered", toOrderResponse(order)})
}
