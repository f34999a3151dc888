package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/beautypos/workstation/internal/auth"
	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/enum"
	"github.com/beautypos/workstation/internal/handler"
	"github.com/beautypos/workstation/internal/middleware"
	"github.com/beautypos/workstation/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

// --- Helpers ---

func setupSessionRouter(t *testing.T) (*chi.Mux, *service.SessionService) {
	t.Helper()
	c := catalog.Default()
	scanner := catalog.ScannerFunc(func(ctx context.Context) (catalog.Product, error) {
		return c.Get("4")
	})
	svc := service.NewSessionService(c, scanner, nil)

	h := handler.NewSessionHandler(svc, testSecret)
	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Route("/{sid}", h.RegisterSessionRoutes)
	})
	return r, svc
}

func setupGuardedSessionRouter(t *testing.T) *chi.Mux {
	t.Helper()
	c := catalog.Default()
	svc := service.NewSessionService(c, catalog.NewSeededScanner(c, 1), nil)

	h := handler.NewSessionHandler(svc, testSecret)
	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Route("/{sid}", func(r chi.Router) {
			r.Use(middleware.RequireSession(testSecret))
			h.RegisterSessionRoutes(r)
		})
	})
	return r
}

func startSession(t *testing.T, router http.Handler) (string, map[string]interface{}) {
	t.Helper()
	rr := doRequest(t, router, "POST", "/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("start session: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	session, _ := resp["session"].(map[string]interface{})
	id, _ := session["session_id"].(string)
	if id == "" {
		t.Fatalf("missing session_id: %v", resp)
	}
	return id, resp
}

func stateOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	session, ok := resp["session"].(map[string]interface{})
	if !ok {
		session = resp
	}
	state, ok := session["state"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing state: %v", resp)
	}
	return state
}

func notificationsOf(t *testing.T, resp map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := resp["notifications"].([]interface{})
	if !ok {
		t.Fatalf("missing notifications: %v", resp)
	}
	out := make([]map[string]interface{}, len(raw))
	for i, n := range raw {
		out[i], _ = n.(map[string]interface{})
	}
	return out
}

// --- Start / Get / End ---

func TestSessionStart(t *testing.T) {
	router, _ := setupSessionRouter(t)

	id, resp := startSession(t, router)

	token, _ := resp["token"].(string)
	claims, err := auth.ValidateSessionToken(testSecret, token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.SessionID.String() != id {
		t.Errorf("token session: got %s, want %s", claims.SessionID, id)
	}

	state := stateOf(t, resp)
	if state["current_view"] != enum.ViewHome {
		t.Errorf("view: got %v", state["current_view"])
	}
	if state["scanned_product"] != nil {
		t.Errorf("scanned_product: got %v", state["scanned_product"])
	}
	if items, _ := state["order_items"].([]interface{}); items == nil || len(items) != 0 {
		t.Errorf("order_items: got %v", state["order_items"])
	}
}

func TestSessionGet(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "GET", "/sessions/"+id+"/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decodeMap(t, rr)
	summary, _ := resp["summary"].(map[string]interface{})
	if summary["total_stock"] != float64(78) || summary["low_stock_count"] != float64(1) {
		t.Errorf("summary: got %v", summary)
	}
	order, _ := resp["order"].(map[string]interface{})
	if order["item_count"] != float64(0) || order["total"] != "0.00" {
		t.Errorf("order: got %v", order)
	}
}

func TestSessionGet_Unknown(t *testing.T) {
	router, _ := setupSessionRouter(t)

	rr := doRequest(t, router, "GET", "/sessions/"+uuid.New().String()+"/", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, router, "GET", "/sessions/not-a-uuid/", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSessionEnd(t *testing.T) {
	router, svc := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "DELETE", "/sessions/"+id+"/", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if svc.Exists(uuid.MustParse(id)) {
		t.Error("session still exists")
	}

	rr = doRequest(t, router, "DELETE", "/sessions/"+id+"/", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Navigate ---

func TestSessionNavigate(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	for _, v := range enum.Views {
		rr := doRequest(t, router, "POST", "/sessions/"+id+"/navigate", map[string]string{"view": v})
		if rr.Code != http.StatusOK {
			t.Fatalf("navigate %s: got %d; body: %s", v, rr.Code, rr.Body.String())
		}
		resp := decodeMap(t, rr)
		if got := stateOf(t, resp)["current_view"]; got != v {
			t.Errorf("view: got %v, want %s", got, v)
		}
		if notes := notificationsOf(t, resp); len(notes) != 0 {
			t.Errorf("navigate should not notify: %v", notes)
		}
	}
}

func TestSessionNavigate_Invalid(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/navigate", map[string]string{"view": "CHECKOUT"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid view: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, router, "POST", "/sessions/"+id+"/navigate", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing view: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Scan / order flow ---

func TestSessionScan(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/scan", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	scanned, _ := stateOf(t, resp)["scanned_product"].(map[string]interface{})
	if scanned["id"] != "4" {
		t.Errorf("scanned: got %v", scanned)
	}
	notes := notificationsOf(t, resp)
	if len(notes) != 1 || notes[0]["severity"] != enum.SeveritySuccess || notes[0]["message"] != "Product scanned: Essie nail polish" {
		t.Errorf("notifications: got %v", notes)
	}
}

func TestSessionScan_Barcode(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/scan", map[string]string{"barcode": "4005900234567"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	scanned, _ := stateOf(t, decodeMap(t, rr))["scanned_product"].(map[string]interface{})
	if scanned["id"] != "2" || scanned["low_stock"] != true {
		t.Errorf("scanned: got %v", scanned)
	}

	rr = doRequest(t, router, "POST", "/sessions/"+id+"/scan", map[string]string{"barcode": "123"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown barcode: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionAddToOrder_NothingScanned(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/order/items", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, router, "POST", "/sessions/"+id+"/order/items", map[string]string{"product_id": "77"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionOrderFlow(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)
	base := "/sessions/" + id

	if rr := doRequest(t, router, "POST", base+"/scan", nil); rr.Code != http.StatusOK {
		t.Fatalf("scan: %d", rr.Code)
	}
	if rr := doRequest(t, router, "POST", base+"/order/items", nil); rr.Code != http.StatusOK {
		t.Fatalf("add scanned: %d", rr.Code)
	}
	rr := doRequest(t, router, "POST", base+"/order/items", map[string]string{"product_id": "1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add by id: %d", rr.Code)
	}
	resp := decodeMap(t, rr)
	session, _ := resp["session"].(map[string]interface{})
	order, _ := session["order"].(map[string]interface{})
	if order["item_count"] != float64(2) || order["total"] != "1048.00" {
		t.Errorf("order summary: got %v", order)
	}
	notes := notificationsOf(t, resp)
	if len(notes) != 1 || notes[0]["message"] != "Product added to order" {
		t.Errorf("notifications: got %v", notes)
	}

	rr = doRequest(t, router, "POST", base+"/order/complete", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete: %d", rr.Code)
	}
	resp = decodeMap(t, rr)
	if items, _ := stateOf(t, resp)["order_items"].([]interface{}); len(items) != 0 {
		t.Errorf("order not cleared: %v", items)
	}
	notes = notificationsOf(t, resp)
	if len(notes) != 1 || notes[0]["message"] != "Order assembled! Items: 2" {
		t.Errorf("notifications: got %v", notes)
	}

	// Completing an order never touches stock.
	session, _ = resp["session"].(map[string]interface{})
	summary, _ := session["summary"].(map[string]interface{})
	if summary["total_stock"] != float64(78) {
		t.Errorf("total_stock changed: %v", summary["total_stock"])
	}
}

func TestSessionCompleteEmptyOrder(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/order/complete", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	notes := notificationsOf(t, decodeMap(t, rr))
	if len(notes) != 1 || notes[0]["message"] != "Order assembled! Items: 0" {
		t.Errorf("notifications: got %v", notes)
	}
}

func TestSessionPlaceholder(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/placeholder", map[string]string{"feature": enum.FeatureBoxUnpacking})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	notes := notificationsOf(t, decodeMap(t, rr))
	if len(notes) != 1 || notes[0]["severity"] != enum.SeverityInfo {
		t.Errorf("notifications: got %v", notes)
	}
}

func TestSessionInvalidBody(t *testing.T) {
	router, _ := setupSessionRouter(t)
	id, _ := startSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+id+"/scan", "not-an-object")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Token-guarded routes ---

func TestSessionRoutesWithToken(t *testing.T) {
	router := setupGuardedSessionRouter(t)
	id, resp := startSession(t, router)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("missing token: %v", resp)
	}
	base := "/sessions/" + id

	rr := doRequest(t, router, "POST", base+"/order/items", map[string]string{"product_id": "2"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = doAuthRequest(t, router, "POST", base+"/order/items", token, map[string]string{"product_id": "2"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doAuthRequest(t, router, "GET", base, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d; body: %s", rr.Code, rr.Body.String())
	}
	state := stateOf(t, decodeMap(t, rr))
	items, _ := state["order_items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("order_items: got %d, want 1", len(items))
	}

	rr = doAuthRequest(t, router, "DELETE", base, token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("end: got %d", rr.Code)
	}
	rr = doAuthRequest(t, router, "GET", base, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("after end: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionAddToOrder_UnknownSessionAndProduct(t *testing.T) {
	router, _ := setupSessionRouter(t)

	rr := doRequest(t, router, "POST", "/sessions/"+uuid.New().String()+"/order/items", map[string]string{"product_id": "42"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if msg := decodeMap(t, rr)["error"]; msg != "session not found" {
		t.Errorf("error: got %v, want session not found", msg)
	}
}
