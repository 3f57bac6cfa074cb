package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	cartservice "storefront/pkg/cart/domain/service"
	catalogservice "storefront/pkg/catalog/domain/service"
	checkoutservice "storefront/pkg/checkout/application/service"
	"storefront/pkg/common/domain"
	orderservice "storefront/pkg/order/domain/service"
	userservice "storefront/pkg/user/domain/service"
)

const cartSessionHeader = "X-Cart-Session"

type Services struct {
	Products catalogservice.ProductService
	Carts    cartservice.CartService
	Orders   orderservice.OrderService
	Checkout checkoutservice.CheckoutService
	Users    userservice.UserService
}

type Config struct {
	UploadDir      string
	MaxUploadBytes int64
}

type Handler struct {
	services Services
	config   Config
}

func Router(services Services, config Config) http.Handler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 5 << 20
	}
	handler := &Handler{services: services, config: config}

	r := mux.NewRouter()
	r.HandleFunc("/", handler.root).Methods(http.MethodGet)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadFiles(config.UploadDir)))

	s := r.PathPrefix("/api").Subrouter()
	s.Use(handler.authMiddleware)

	s.HandleFunc("/auth/register", handler.register).Methods(http.MethodPost)
	s.HandleFunc("/auth/login", handler.login).Methods(http.MethodPost)
	s.HandleFunc("/auth/profile", handler.profile).Methods(http.MethodGet)
	s.HandleFunc("/users/register", handler.register).Methods(http.MethodPost)
	s.HandleFunc("/users/login", handler.login).Methods(http.MethodPost)
	s.HandleFunc("/users/{id}/suspend", handler.suspendUser).Methods(http.MethodPut)
	s.HandleFunc("/users/{id}/activate", handler.activateUser).Methods(http.MethodPut)

	s.HandleFunc("/products", handler.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products", handler.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products/{id}", handler.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/products/{id}", handler.updateProduct).Methods(http.MethodPut)
	s.HandleFunc("/products/{id}", handler.deleteProduct).Methods(http.MethodDelete)

	s.HandleFunc("/cart", handler.getCart).Methods(http.MethodGet)
	s.HandleFunc("/cart", handler.clearCart).Methods(http.MethodDelete)
	s.HandleFunc("/cart/items", handler.addCartLine).Methods(http.MethodPost)
	s.HandleFunc("/cart/items", handler.setCartQuantity).Methods(http.MethodPut)
	s.HandleFunc("/cart/items", handler.removeCartLine).Methods(http.MethodDelete)

	s.HandleFunc("/orders", handler.placeOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders", handler.listOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders/myorders", handler.myOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}", handler.getOrder).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}/pay", handler.payOrder).Methods(http.MethodPut)
	s.HandleFunc("/orders/{id}/deliver", handler.deliverOrder).Methods(http.MethodPut)

	s.HandleFunc("/upload", handler.upload).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
	})

	return logMiddleware(r)
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "E-commerce backend is running")
}

type principalKey struct{}

// authMiddleware resolves an optional bearer token into a principal. Handlers decide whether one is required.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, userservice.ErrInvalidToken)
			return
		}

		principal, err := h.services.Users.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, principal)))
	})
}

func principalFrom(r *http.Request) domain.Principal {
	principal, _ := r.Context().Value(principalKey{}).(domain.Principal)
	return principal
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(recorder, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
			"status":     recorder.status,
			"duration":   time.Since(start).String(),
		}).Info("handled request")
	})
}
