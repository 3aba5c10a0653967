package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"

	"github.com/gorilla/mux"
)

const RestaurantHeader = "X-Restaurant-ID"

type WebSocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, restaurantID string, role domain.Role)
}

type Handler struct {
	Orders   service.OrderServiceInterface
	Business service.BusinessServiceInterface
	Sockets  WebSocketServer
	Metrics  http.Handler
}

func NewHandler(orders service.OrderServiceInterface, business service.BusinessServiceInterface, sockets WebSocketServer, metrics http.Handler) *Handler {
	return &Handler{
		Orders:   orders,
		Business: business,
		Sockets:  sockets,
		Metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}
	if h.Sockets != nil {
		r.HandleFunc("/ws", h.serveWS).Methods("GET")
	}

	r.HandleFunc("/api/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.deleteOrder).Methods("DELETE")
	r.HandleFunc("/api/orders/{id}/priority/{priority}", h.changePriority).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/status/{status}", h.changeStatus).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/confirm", h.confirmPayment).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/start", h.startPreparing).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/finish", h.finishPreparing).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/transaction/{waiterId}", h.setTransactionHandler).Methods("PATCH")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	h.registerBusinessRoutes(r)
}

func restaurantID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RestaurantHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("restaurantId"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		validation *service.ValidationError
		missing    *service.NotFoundError
		conflict   *service.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &missing):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	rid := restaurantID(r)
	if rid == "" {
		http.Error(w, "restaurant id is required", http.StatusBadRequest)
		return
	}
	role := domain.Role(strings.ToUpper(r.URL.Query().Get("role")))
	if !role.Valid() {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	h.Sockets.ServeWS(w, r, rid, role)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Orders.Create(r.Context(), restaurantID(r), &order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.FindOne(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Delete(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) changePriority(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	priority := domain.Priority(strings.ToUpper(vars["priority"]))
	order, err := h.Orders.ChangePriority(r.Context(), restaurantID(r), vars["id"], priority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	status := domain.Status(strings.ToUpper(vars["status"]))
	order, err := h.Orders.ChangeStatus(r.Context(), restaurantID(r), vars["id"], status, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.ConfirmPayment(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) startPreparing(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.StartPreparing(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) finishPreparing(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.FinishPreparing(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) setTransactionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	order, err := h.Orders.SetTransactionHandler(r.Context(), restaurantID(r), vars["waiterId"], vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	qrCode, err := h.Orders.ReceiptQR(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if len(qrCode) == 0 {
		http.Error(w, "QR code not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qrCode)
}
