package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/beautypos/workstation/internal/auth"
	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/middleware"
	"github.com/beautypos/workstation/internal/service"
	"github.com/beautypos/workstation/internal/workstation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionService defines the session operations needed by session handlers.
// Satisfied by *service.SessionService.
type SessionService interface {
	StartSession() service.Snapshot
	EndSession(id uuid.UUID) error
	Snapshot(id uuid.UUID) (service.Snapshot, error)
	Navigate(id uuid.UUID, view string) (*service.Result, error)
	Scan(ctx context.Context, id uuid.UUID, barcode string) (*service.Result, error)
	AddToOrder(id uuid.UUID, productID string) (*service.Result, error)
	CompleteOrder(id uuid.UUID) (*service.Result, error)
	OpenPlaceholder(id uuid.UUID, feature string) (*service.Result, error)
	Catalog() service.Catalog
}

// SessionHandler exposes the workstation controller for a single session.
type SessionHandler struct {
	svc    SessionService
	secret string
}

// NewSessionHandler creates a new SessionHandler. secret signs session tokens.
func NewSessionHandler(svc SessionService, secret string) *SessionHandler {
	return &SessionHandler{svc: svc, secret: secret}
}

// RegisterRoutes registers the public session endpoints. Mounted at /sessions
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Start)
}

// RegisterSessionRoutes registers the token-guarded endpoints.
// Expected to be mounted inside a session-scoped subrouter: /sessions/{sid}
func (h *SessionHandler) RegisterSessionRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.End)
	r.Post("/navigate", h.Navigate)
	r.Post("/scan", h.Scan)
	r.Post("/order/items", h.AddToOrder)
	r.Post("/order/complete", h.CompleteOrder)
	r.Post("/placeholder", h.OpenPlaceholder)
}

// --- Request / Response types ---

type navigateRequest struct {
	View string `json:"view"`
}

type scanRequest struct {
	Barcode string `json:"barcode"`
}

type addToOrderRequest struct {
	ProductID string `json:"product_id"`
}

type placeholderRequest struct {
	Feature string `json:"feature"`
}

type stateResponse struct {
	CurrentView    string            `json:"current_view"`
	ScannedProduct *productResponse  `json:"scanned_product"`
	OrderItems     []productResponse `json:"order_items"`
}

type orderSummaryResponse struct {
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

type sessionResponse struct {
	SessionID uuid.UUID            `json:"session_id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	State     stateResponse        `json:"state"`
	Order     orderSummaryResponse `json:"order"`
	Summary   catalog.Summary      `json:"summary"`
}

type startSessionResponse struct {
	Token   string          `json:"token"`
	Session sessionResponse `json:"session"`
}

type actionResponse struct {
	Session       sessionResponse            `json:"session"`
	Notifications []workstation.Notification `json:"notifications"`
}

func (h *SessionHandler) toSessionResponse(s service.Snapshot) sessionResponse {
	state := stateResponse{
		CurrentView: s.State.CurrentView,
		OrderItems:  toProductResponses(s.State.OrderItems),
	}
	if s.State.ScannedProduct != nil {
		p := toProductResponse(*s.State.ScannedProduct)
		state.ScannedProduct = &p
	}

	order := s.State.Order()
	return sessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		State:     state,
		Order: orderSummaryResponse{
			ItemCount: order.ItemCount,
			Total:     order.Total.StringFixed(2),
		},
		// Recomputed per request, never cached.
		Summary: h.svc.Catalog().Summary(),
	}
}

func (h *SessionHandler) toActionResponse(res *service.Result) actionResponse {
	notes := res.Notifications
	if notes == nil {
		notes = []workstation.Notification{}
	}
	return actionResponse{Session: h.toSessionResponse(res.Snapshot), Notifications: notes}
}

// --- Helpers ---

// sessionIDFromRequest prefers the session bound by the token, which
// RequireSession has already matched against {sid}.
func sessionIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.SessionID, true
	}
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	return id, err == nil
}

func (h *SessionHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidView):
		writeError(w, http.StatusBadRequest, "invalid view")
	case errors.Is(err, service.ErrNothingScanned):
		writeError(w, http.StatusBadRequest, "no product has been scanned")
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// --- Handlers ---

// Start creates a session and returns it with its token.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.StartSession()

	token, err := auth.GenerateSessionToken(h.secret, snap.ID)
	if err != nil {
		log.Printf("ERROR: generate session token: %v", err)
		_ = h.svc.EndSession(snap.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		Token:   token,
		Session: h.toSessionResponse(snap),
	})
}

// Get returns the session's current state.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	snap, err := h.svc.Snapshot(id)
	if err != nil {
		h.writeServiceError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toSessionResponse(snap))
}

// End discards the session.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	if err := h.svc.EndSession(id); err != nil {
		h.writeServiceError(w, "end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate switches the visible screen.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	var req navigateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.View == "" {
		writeError(w, http.StatusBadRequest, "view is required")
		return
	}

	res, err := h.svc.Navigate(id, req.View)
	if err != nil {
		h.writeServiceError(w, "navigate", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActionResponse(res))
}

// Scan acquires a product: by barcode when given, otherwise from the
// configured scanner.
func (h *SessionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	var req scanRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Scan(r.Context(), id, req.Barcode)
	if err != nil {
		h.writeServiceError(w, "scan", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActionResponse(res))
}

// AddToOrder appends a product (default: the scanned one) to the order.
func (h *SessionHandler) AddToOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	var req addToOrderRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.AddToOrder(id, req.ProductID)
	if err != nil {
		h.writeServiceError(w, "add to order", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActionResponse(res))
}

// CompleteOrder reports the item count and clears the order.
func (h *SessionHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	res, err := h.svc.CompleteOrder(id)
	if err != nil {
		h.writeServiceError(w, "complete order", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActionResponse(res))
}

// OpenPlaceholder handles tiles for features that are not built yet.
func (h *SessionHandler) OpenPlaceholder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	var req placeholderRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.OpenPlaceholder(id, req.Feature)
	if err != nil {
		h.writeServiceError(w, "open placeholder", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActionResponse(res))
}
