package catalog

import (
	"strings"
	"unicode"

	"github.com/beautypos/workstation/internal/enum"
)

const (
	barcodeWeight = 5
	regularWeight = 1
)

// SearchResult is the outcome of a keyword search.
type SearchResult struct {
	Status     string    // enum.Match*
	Product    *Product  // when MATCHED
	Candidates []Product // when AMBIGUOUS
}

// Matcher performs keyword-based product matching over name, category and barcode.
type Matcher struct {
	products    []Product
	keywordSets []map[string]bool
}

// NewMatcher creates a Matcher with pre-tokenized keywords for each product.
func NewMatcher(products []Product) *Matcher {
	m := &Matcher{
		products:    products,
		keywordSets: make([]map[string]bool, len(products)),
	}
	for i, p := range products {
		set := make(map[string]bool)
		for _, tok := range tokenize(normalize(p.Name + " " + p.Category)) {
			set[tok] = true
		}
		set[p.Barcode] = true
		m.keywordSets[i] = set
	}
	return m
}

// Search matches the catalog against query.
func (c *Catalog) Search(query string) SearchResult {
	return NewMatcher(c.products).Match(query)
}

// Match scores every product by keyword intersection with text. A barcode hit
// weighs more than a name or category hit.
func (m *Matcher) Match(text string) SearchResult {
	tokens := tokenize(normalize(text))
	if len(tokens) == 0 {
		return SearchResult{Status: enum.MatchUnmatched}
	}

	type scoredProduct struct {
		product Product
		score   int
	}

	var scored []scoredProduct
	maxScore := 0
	for i, p := range m.products {
		score := 0
		for _, tok := range tokens {
			if !m.keywordSets[i][tok] {
				continue
			}
			if tok == p.Barcode {
				score += barcodeWeight
			} else {
				score += regularWeight
			}
		}
		if score == 0 {
			continue
		}
		scored = append(scored, scoredProduct{product: p, score: score})
		if score > maxScore {
			maxScore = score
		}
	}

	if len(scored) == 0 {
		return SearchResult{Status: enum.MatchUnmatched}
	}

	var top []Product
	for _, s := range scored {
		if s.score == maxScore {
			top = append(top, s.product)
		}
	}

	if len(top) == 1 {
		return SearchResult{Status: enum.MatchMatched, Product: &top[0]}
	}
	return SearchResult{Status: enum.MatchAmbiguous, Candidates: top}
}

// normalize lowercases s and replaces non-alphanumeric runes with spaces.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func tokenize(s string) []string {
	return strings.Fields(s)
}
