package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"canteen-dashboard/internal/dashboard"
	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/models"
	"canteen-dashboard/internal/store"
)

// ownerHeader carries the authenticated owner identity. Authentication
// itself happens in the managed backend; by the time a request reaches
// this service the identity is already resolved.
const ownerHeader = "X-Owner-ID"

// Handler handles HTTP requests for the dashboard service
type Handler struct {
	manager *dashboard.Manager
	store   store.Store
	health  func(ctx context.Context) bool
	logger  *logger.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(manager *dashboard.Manager, st store.Store, health func(ctx context.Context) bool, log *logger.Logger) *Handler {
	return &Handler{
		manager: manager,
		store:   st,
		health:  health,
		logger:  log,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /dashboard", h.withLogging(h.GetDashboard))
	mux.HandleFunc("GET /orders", h.withLogging(h.ListOrders))
	mux.HandleFunc("POST /orders/{id}/advance", h.withLogging(h.AdvanceOrder))
	mux.HandleFunc("GET /reviews", h.withLogging(h.ListReviews))
	mux.HandleFunc("GET /menu", h.withLogging(h.ListMenu))
	mux.HandleFunc("POST /menu", h.withLogging(h.CreateMenuItem))
	mux.HandleFunc("PUT /menu/{id}", h.withLogging(h.UpdateMenuItem))
	mux.HandleFunc("POST /menu/{id}/availability", h.withLogging(h.SetMenuItemAvailability))
	mux.HandleFunc("DELETE /menu/{id}", h.withLogging(h.DeleteMenuItem))
	mux.HandleFunc("GET /health", h.withLogging(h.HealthCheck))

	return mux
}

// dashboardResponse is the payload backing the main dashboard screen
type dashboardResponse struct {
	Stats       dashboard.DashboardStats `json:"stats"`
	LiveOrders  []models.Order           `json:"live_orders"`
	RefreshedAt time.Time                `json:"refreshed_at"`
}

// GetDashboard handles GET /dashboard requests
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	session, ok := h.sessionFor(w, r, requestID)
	if !ok {
		return
	}
	if session == nil {
		// No canteen resolved: an empty dashboard, not an error
		h.writeJSON(w, http.StatusOK, dashboardResponse{LiveOrders: []models.Order{}})
		return
	}

	snap := session.Snapshot()
	h.writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:       snap.Stats,
		LiveOrders:  snap.LiveOrders,
		RefreshedAt: snap.RefreshedAt,
	})
}

type orderListResponse struct {
	Orders []models.Order `json:"orders"`
	Total  int            `json:"total"`
}

// ListOrders handles GET /orders requests (order history with optional
// status filter and customer search)
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	session, ok := h.sessionFor(w, r, requestID)
	if !ok {
		return
	}
	if session == nil {
		h.writeJSON(w, http.StatusOK, orderListResponse{Orders: []models.Order{}})
		return
	}

	status := r.URL.Query().Get("status")
	query := r.URL.Query().Get("q")

	orders := dashboard.FilterOrders(session.Snapshot().Orders, status, query)
	h.writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Total: len(orders)})
}

type advanceRequest struct {
	Status models.OrderStatus `json:"status"`
}

// AdvanceOrder handles POST /orders/{id}/advance requests
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	orderID := r.PathValue("id")

	session, ok := h.sessionFor(w, r, requestID)
	if !ok {
		return
	}
	if session == nil {
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
		return
	}

	var req advanceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if !req.Status.Valid() {
		h.writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	err := session.Advance(ctx, orderID, req.Status)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, dashboard.ErrUnknownOrder):
		h.writeErrorResponse(w, http.StatusNotFound, "order not found", requestID)
	case errors.Is(err, dashboard.ErrInvalidTransition):
		h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
	case errors.Is(err, store.ErrConflict):
		h.writeErrorResponse(w, http.StatusConflict, "invalid state or already updated", requestID)
	default:
		h.logger.Error("advance_failed", "Failed to advance order", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

type reviewListResponse struct {
	Reviews []models.Review       `json:"reviews"`
	Stats   dashboard.ReviewStats `json:"stats"`
}

// ListReviews handles GET /reviews requests. The rating filter narrows
// the listed reviews only; stats always cover the full snapshot.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	session, ok := h.sessionFor(w, r, requestID)
	if !ok {
		return
	}
	if session == nil {
		h.writeJSON(w, http.StatusOK, reviewListResponse{Reviews: []models.Review{}})
		return
	}

	filter, err := dashboard.ParseRatingFilter(r.URL.Query().Get("rating"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	snap := session.Snapshot()
	h.writeJSON(w, http.StatusOK, reviewListResponse{
		Reviews: dashboard.FilterReviews(snap.Reviews, filter),
		Stats:   snap.ReviewStats,
	})
}

// ListMenu handles GET /menu requests
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	canteenID, ok := h.canteenFor(w, r, requestID)
	if !ok {
		return
	}
	if canteenID == "" {
		h.writeJSON(w, http.StatusOK, []models.MenuItem{})
		return
	}

	items, err := h.store.ListMenuItems(r.Context(), canteenID)
	if err != nil {
		h.logger.Error("menu_list_failed", "Failed to list menu items", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// CreateMenuItem handles POST /menu requests
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	canteenID, ok := h.canteenFor(w, r, requestID)
	if !ok {
		return
	}
	if canteenID == "" {
		h.writeErrorResponse(w, http.StatusNotFound, "no canteen for owner", requestID)
		return
	}

	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	item.CanteenID = canteenID
	if err := item.Validate(); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	if err := h.store.CreateMenuItem(r.Context(), &item); err != nil {
		h.logger.Error("menu_create_failed", "Failed to create menu item", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /menu/{id} requests
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	itemID := r.PathValue("id")

	canteenID, ok := h.canteenFor(w, r, requestID)
	if !ok {
		return
	}
	if canteenID == "" {
		h.writeErrorResponse(w, http.StatusNotFound, "no canteen for owner", requestID)
		return
	}

	var item models.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	item.ID = itemID
	item.CanteenID = canteenID
	if err := item.Validate(); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	err := h.store.UpdateMenuItem(r.Context(), &item)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, item)
	case errors.Is(err, store.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "menu item not found", requestID)
	default:
		h.logger.Error("menu_update_failed", "Failed to update menu item", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// SetMenuItemAvailability handles POST /menu/{id}/availability requests
func (h *Handler) SetMenuItemAvailability(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	itemID := r.PathValue("id")

	canteenID, ok := h.canteenFor(w, r, requestID)
	if !ok {
		return
	}
	if canteenID == "" {
		h.writeErrorResponse(w, http.StatusNotFound, "no canteen for owner", requestID)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	err := h.store.SetMenuItemAvailability(r.Context(), canteenID, itemID, req.IsAvailable)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "menu item not found", requestID)
	default:
		h.logger.Error("menu_availability_failed", "Failed to set menu item availability", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// DeleteMenuItem handles DELETE /menu/{id} requests
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	itemID := r.PathValue("id")

	canteenID, ok := h.canteenFor(w, r, requestID)
	if !ok {
		return
	}
	if canteenID == "" {
		h.writeErrorResponse(w, http.StatusNotFound, "no canteen for owner", requestID)
		return
	}

	err := h.store.DeleteMenuItem(r.Context(), canteenID, itemID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "menu item not found", requestID)
	default:
		h.logger.Error("menu_delete_failed", "Failed to delete menu item", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.health == nil || h.health(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "dashboard-service",
		"healthy":   healthy,
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}

	h.writeJSON(w, code, response)
}

// sessionFor resolves the request's owner into a running session. A nil
// session with ok=true means the owner has no canteen (empty state).
func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request, requestID string) (*dashboard.Session, bool) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		h.writeErrorResponse(w, http.StatusUnauthorized, fmt.Sprintf("%s header is required", ownerHeader), requestID)
		return nil, false
	}

	session, err := h.manager.SessionForOwner(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNoCanteen) {
			return nil, true
		}
		h.logger.Error("session_resolve_failed", "Failed to resolve dashboard session", requestID, err, map[string]interface{}{
			"owner_id": ownerID,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return nil, false
	}

	return session, true
}

// canteenFor resolves the request's owner into a canteen id. An empty id
// with ok=true means the owner has no canteen.
func (h *Handler) canteenFor(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	session, ok := h.sessionFor(w, r, requestID)
	if !ok {
		return "", false
	}
	if session == nil {
		return "", true
	}
	return session.CanteenID(), true
}

// writeJSON writes a JSON response with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", "", err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

type contextKey string

const requestIDKey contextKey = "request_id"

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return logger.GenerateRequestID()
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		// Create a response writer that captures status code
		rw := &responseWriter{ResponseWriter: w, statusCode: 200}

		// Call the handler
		next(rw, r)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
