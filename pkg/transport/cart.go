package transport

import (
	"net/http"

	"github.com/google/uuid"

	cartmodel "storefront/pkg/cart/domain/model"
	cartservice "storefront/pkg/cart/domain/service"
	"storefront/pkg/common/domain"
	noticemodel "storefront/pkg/notification/domain/model"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

// cartSession resolves the cart a request works on. Anonymous shoppers are keyed by the X-Cart-Session header;
// a missing or malformed header starts a new session, echoed back in the response. Signed-in shoppers use
// their account cart, and a guest cart named by the header is merged into it.
func (h *Handler) cartSession(w http.ResponseWriter, r *http.Request) (string, error) {
	guestID, guestErr := uuid.Parse(r.Header.Get(cartSessionHeader))

	principal := principalFrom(r)
	if principal.IsAnonymous() {
		if guestErr != nil {
			guestID = uuid.New()
		}
		w.Header().Set(cartSessionHeader, guestID.String())
		return guestCartSession(guestID), nil
	}

	sessionID := userCartSession(principal)
	if guestErr == nil {
		if _, err := h.services.Carts.MergeCarts(r.Context(), guestCartSession(guestID), sessionID); err != nil {
			return "", err
		}
	}
	return sessionID, nil
}

func guestCartSession(id uuid.UUID) string {
	return "anon:" + id.String()
}

func userCartSession(principal domain.Principal) string {
	return "user:" + principal.UserID.String()
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	cart, err := h.services.Carts.GetCart(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, noticemodel.Notice{}))
}

func (h *Handler) addCartLine(w http.ResponseWriter, r *http.Request) {
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cart, notice, err := h.services.Carts.AddLine(r.Context(), session, cartservice.AddLineInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, notice))
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	key := cartmodel.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cart, notice, err := h.services.Carts.SetQuantity(r.Context(), session, key, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, notice))
}

// removeCartLine reads the line identity from the query string: ?productId=&size=&color=.
func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.URL.Query()
	productID, err := uuid.Parse(query.Get("productId"))
	if err != nil {
		writeError(w, errInvalidID)
		return
	}
	key := cartmodel.LineKey{ProductID: productID, Size: query.Get("size"), Color: query.Get("color")}

	cart, notice, err := h.services.Carts.RemoveLine(r.Context(), session, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, notice))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.cartSession(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	cart, notice, err := h.services.Carts.Clear(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, notice))
}
