package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Errors returned by the catalog.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrEmptyCatalog     = errors.New("catalog has no products")
	ErrMissingID        = errors.New("product id is required")
	ErrMissingName      = errors.New("product name is required")
	ErrMissingBarcode   = errors.New("product barcode is required")
	ErrDuplicateID      = errors.New("duplicate product id")
	ErrDuplicateBarcode = errors.New("duplicate product barcode")
	ErrNegativeStock    = errors.New("stock must be >= 0")
	ErrNegativeMinStock = errors.New("min_stock must be >= 0")
	ErrNegativePrice    = errors.New("price must be >= 0")
)

// Product is a catalog entry with stock and reorder metadata.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Barcode  string          `json:"barcode"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// IsLowStock reports whether the product is below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock < p.MinStock
}

// StockLevel returns stock as a percentage of twice the reorder threshold,
// clamped to [0, 100].
func (p Product) StockLevel() int {
	if p.MinStock <= 0 {
		return 100
	}
	level := p.Stock * 100 / (p.MinStock * 2)
	switch {
	case level < 0:
		return 0
	case level > 100:
		return 100
	}
	return level
}

// ProductLookup resolves a scanned barcode to a catalog product.
// Returns ErrProductNotFound when the barcode is unknown.
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (Product, error)
}

// Summary holds the stock figures shown on the home and inventory screens.
type Summary struct {
	ProductCount  int `json:"product_count"`
	TotalStock    int `json:"total_stock"`
	InStockCount  int `json:"in_stock_count"`
	LowStockCount int `json:"low_stock_count"`
}

// Catalog is an immutable, ordered product list indexed by id and barcode.
type Catalog struct {
	products  []Product
	byID      map[string]int
	byBarcode map[string]int
}

// New validates products and builds a catalog preserving their order.
func New(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		products:  make([]Product, len(products)),
		byID:      make(map[string]int, len(products)),
		byBarcode: make(map[string]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("product %q: %w", p.ID, ErrDuplicateID)
		}
		if _, ok := c.byBarcode[p.Barcode]; ok {
			return nil, fmt.Errorf("barcode %q: %w", p.Barcode, ErrDuplicateBarcode)
		}
		c.byID[p.ID] = i
		c.byBarcode[p.Barcode] = i
	}
	return c, nil
}

func validateProduct(p Product) error {
	switch {
	case p.ID == "":
		return ErrMissingID
	case p.Name == "":
		return ErrMissingName
	case p.Barcode == "":
		return ErrMissingBarcode
	case p.Stock < 0:
		return ErrNegativeStock
	case p.MinStock < 0:
		return ErrNegativeMinStock
	case p.Price.IsNegative():
		return ErrNegativePrice
	}
	return nil
}

// Default returns the built-in four-product catalog.
func Default() *Catalog {
	c, err := New(defaultProducts())
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid default catalog: %v", err))
	}
	return c
}

func defaultProducts() []Product {
	return []Product{
		{ID: "1", Name: "L'Oreal Rouge Signature lipstick", Barcode: "3600523567898", Stock: 24, MinStock: 10, Category: "Makeup", Price: decimal.NewFromInt(599)},
		{ID: "2", Name: "Nivea hand cream", Barcode: "4005900234567", Stock: 5, MinStock: 15, Category: "Care", Price: decimal.NewFromInt(249)},
		{ID: "3", Name: "Maybelline Lash Sensational mascara", Barcode: "3600531234567", Stock: 18, MinStock: 8, Category: "Makeup", Price: decimal.NewFromInt(699)},
		{ID: "4", Name: "Essie nail polish", Barcode: "3600523234567", Stock: 31, MinStock: 12, Category: "Manicure", Price: decimal.NewFromInt(449)},
	}
}

// Load reads a JSON array of products from path and validates it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c, err := New(products)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return c, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns a copy of all products in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// At returns the product at position i in catalog order.
func (c *Catalog) At(i int) Product {
	return c.products[i]
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Lookup implements ProductLookup against the catalog's barcode index.
func (c *Catalog) Lookup(ctx context.Context, barcode string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	i, ok := c.byBarcode[barcode]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// LowStock returns the products below their reorder threshold, in catalog order.
func (c *Catalog) LowStock() []Product {
	var out []Product
	for _, p := range c.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// Summary recomputes the stock figures from the product list.
func (c *Catalog) Summary() Summary {
	s := Summary{ProductCount: len(c.products)}
	for _, p := range c.products {
		s.TotalStock += p.Stock
		if p.IsLowStock() {
			s.LowStockCount++
		} else {
			s.InStockCount++
		}
	}
	return s
}
