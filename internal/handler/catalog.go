package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/beautypos/workstation/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// CatalogStore defines the catalog methods needed by catalog handlers.
// Satisfied by *catalog.Catalog; narrow interface for testability.
type CatalogStore interface {
	Products() []catalog.Product
	LowStock() []catalog.Product
	Get(id string) (catalog.Product, error)
	Lookup(ctx context.Context, barcode string) (catalog.Product, error)
	Summary() catalog.Summary
	Search(query string) catalog.SearchResult
}

// CatalogHandler serves the read-only product catalog.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
// Expected to be mounted at /catalog
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
	r.Get("/barcodes/{barcode}", h.Lookup)
	r.Get("/summary", h.Summary)
	r.Get("/search", h.Search)
}

// --- Response types ---

type productResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Barcode    string `json:"barcode"`
	Stock      int    `json:"stock"`
	MinStock   int    `json:"min_stock"`
	Category   string `json:"category"`
	Price      string `json:"price"`
	LowStock   bool   `json:"low_stock"`
	StockLevel int    `json:"stock_level"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Barcode:  p.Barcode,
		Stock:    p.Stock,
		MinStock: p.MinStock,
		Category: p.Category,
		// Always format with 2 decimal places for consistent money representation.
		Price:      p.Price.StringFixed(2),
		LowStock:   p.IsLowStock(),
		StockLevel: p.StockLevel(),
	}
}

func toProductResponses(products []catalog.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

type searchResponse struct {
	Status     string            `json:"status"`
	Product    *productResponse  `json:"product,omitempty"`
	Candidates []productResponse `json:"candidates,omitempty"`
}

// --- Handlers ---

// List returns all products, or only those below their reorder threshold
// when ?low_stock=true.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("low_stock") {
	case "":
		writeJSON(w, http.StatusOK, toProductResponses(h.store.Products()))
	case "true":
		writeJSON(w, http.StatusOK, toProductResponses(h.store.LowStock()))
	case "false":
		var in []catalog.Product
		for _, p := range h.store.Products() {
			if !p.IsLowStock() {
				in = append(in, p)
			}
		}
		writeJSON(w, http.StatusOK, toProductResponses(in))
	default:
		writeError(w, http.StatusBadRequest, "invalid low_stock filter")
	}
}

// Get returns a single product by ID.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// Lookup resolves a barcode to a product.
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Lookup(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("ERROR: lookup barcode: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// Summary returns the stock figures for the home and inventory screens.
func (h *CatalogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Summary())
}

// Search matches products by name, category or barcode keywords.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	res := h.store.Search(q)
	resp := searchResponse{Status: res.Status}
	if res.Product != nil {
		p := toProductResponse(*res.Product)
		resp.Product = &p
	}
	if len(res.Candidates) > 0 {
		resp.Candidates = toProductResponses(res.Candidates)
	}
	writeJSON(w, http.StatusOK, resp)
}
