package enum

import "slices"

// ── Group A: State machine (workstation screens) ──

const (
	ViewHome      = "HOME"
	ViewScan      = "SCAN"
	ViewInventory = "INVENTORY"
	ViewOrders    = "ORDERS"
)

// Views lists every screen in tile order. All are reachable from each other.
var Views = []string{ViewHome, ViewScan, ViewInventory, ViewOrders}

// IsValidView reports whether v names a workstation screen.
func IsValidView(v string) bool {
	return slices.Contains(Views, v)
}

const (
	ActionNavigate        = "NAVIGATE"
	ActionScan            = "SCAN"
	ActionAddToOrder      = "ADD_TO_ORDER"
	ActionCompleteOrder   = "COMPLETE_ORDER"
	ActionOpenPlaceholder = "OPEN_PLACEHOLDER"
)

// ── Group B: Notification labels ──

const (
	SeveritySuccess = "SUCCESS"
	SeverityInfo    = "INFO"
)

const (
	EventNotification = "notification"
	EventSessionEnded = "session.ended"
)

// ── Group C: Configurable labels ──

const (
	FeatureBoxUnpacking = "BOX_UNPACKING"
)

const (
	MatchMatched   = "MATCHED"
	MatchAmbiguous = "AMBIGUOUS"
	MatchUnmatched = "UNMATCHED"
)
