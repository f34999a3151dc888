// Package workstation holds the view/order state machine for an employee
// workstation session. Reduce is pure: it never mutates its input and emits
// notifications as values rather than side effects.
package workstation

import (
	"fmt"

	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/enum"
	"github.com/shopspring/decimal"
)

// State is a single session's screen selection, last scan and pending order.
type State struct {
	CurrentView    string            `json:"current_view"`
	ScannedProduct *catalog.Product  `json:"scanned_product"`
	OrderItems     []catalog.Product `json:"order_items"`
}

// Notification is an ephemeral message for the operator.
type Notification struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Action is a user-triggered event. Only the fields relevant to Kind are read.
type Action struct {
	Kind    string           // enum.Action*
	View    string           // NAVIGATE
	Product *catalog.Product // SCAN, ADD_TO_ORDER
	Feature string           // OPEN_PLACEHOLDER
}

// Navigate switches to view.
func Navigate(view string) Action {
	return Action{Kind: enum.ActionNavigate, View: view}
}

// Scan records a product acquired by a scanner.
func Scan(p catalog.Product) Action {
	return Action{Kind: enum.ActionScan, Product: &p}
}

// AddToOrder appends p to the pending order.
func AddToOrder(p catalog.Product) Action {
	return Action{Kind: enum.ActionAddToOrder, Product: &p}
}

// CompleteOrder closes the pending order.
func CompleteOrder() Action {
	return Action{Kind: enum.ActionCompleteOrder}
}

// OpenPlaceholder triggers a tile whose feature is not built yet.
func OpenPlaceholder(feature string) Action {
	return Action{Kind: enum.ActionOpenPlaceholder, Feature: feature}
}

// InitialState returns the state a fresh session starts in.
func InitialState() State {
	return State{CurrentView: enum.ViewHome, OrderItems: []catalog.Product{}}
}

// Reduce applies a to s and returns the next state with the notifications the
// transition produced. Every action is total: unknown kinds and actions
// missing their product leave the state unchanged.
func Reduce(s State, a Action) (State, []Notification) {
	next := s.clone()

	switch a.Kind {
	case enum.ActionNavigate:
		next.CurrentView = a.View
		return next, nil

	case enum.ActionScan:
		if a.Product == nil {
			return next, nil
		}
		p := *a.Product
		next.ScannedProduct = &p
		return next, []Notification{success(fmt.Sprintf("Product scanned: %s", p.Name))}

	case enum.ActionAddToOrder:
		if a.Product == nil {
			return next, nil
		}
		next.OrderItems = append(next.OrderItems, *a.Product)
		return next, []Notification{success("Product added to order")}

	case enum.ActionCompleteOrder:
		n := len(next.OrderItems)
		next.OrderItems = []catalog.Product{}
		return next, []Notification{success(fmt.Sprintf("Order assembled! Items: %d", n))}

	case enum.ActionOpenPlaceholder:
		return next, []Notification{{Severity: enum.SeverityInfo, Message: "Feature in development"}}
	}

	return next, nil
}

func success(msg string) Notification {
	return Notification{Severity: enum.SeveritySuccess, Message: msg}
}

// clone copies s so the reducer's output never aliases its input.
func (s State) clone() State {
	out := State{CurrentView: s.CurrentView}
	if s.ScannedProduct != nil {
		p := *s.ScannedProduct
		out.ScannedProduct = &p
	}
	out.OrderItems = make([]catalog.Product, len(s.OrderItems), len(s.OrderItems)+1)
	copy(out.OrderItems, s.OrderItems)
	return out
}

// OrderSummary is the totals block of the orders screen.
type OrderSummary struct {
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// Order summarizes the pending order.
func (s State) Order() OrderSummary {
	sum := OrderSummary{ItemCount: len(s.OrderItems), Total: decimal.Zero}
	for _, p := range s.OrderItems {
		sum.Total = sum.Total.Add(p.Price)
	}
	return sum
}
