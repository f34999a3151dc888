package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/enum"
	"github.com/beautypos/workstation/internal/workstation"
	"github.com/google/uuid"
)

// Errors returned by the session service.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidView     = errors.New("invalid view")
	ErrNothingScanned  = errors.New("no product has been scanned")
	ErrProductNotFound = catalog.ErrProductNotFound
)

// Catalog defines the catalog methods the session service needs.
// Satisfied by *catalog.Catalog.
type Catalog interface {
	catalog.ProductLookup
	Get(id string) (catalog.Product, error)
	Summary() catalog.Summary
}

// Notifier receives the notifications each session operation emits.
// Satisfied by *ws.Hub.
type Notifier interface {
	Notify(sessionID uuid.UUID, notes []workstation.Notification)
	SessionEnded(sessionID uuid.UUID)
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	State     workstation.State
}

// Result is the outcome of a session operation.
type Result struct {
	Snapshot      Snapshot
	Notifications []workstation.Notification
}

type session struct {
	mu        sync.Mutex
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	state     workstation.State
}

func (s *session) snapshot() Snapshot {
	return Snapshot{ID: s.id, CreatedAt: s.createdAt, UpdatedAt: s.updatedAt, State: s.state}
}

// SessionService owns the in-memory workstation sessions and applies user
// actions to them through workstation.Reduce.
type SessionService struct {
	catalog  Catalog
	scanner  catalog.Scanner
	notifier Notifier
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewSessionService creates a SessionService. scanner is used for scans
// that do not supply a barcode. notifier may be nil.
func NewSessionService(c Catalog, scanner catalog.Scanner, notifier Notifier) *SessionService {
	return &SessionService{
		catalog:  c,
		scanner:  scanner,
		notifier: notifier,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Catalog returns the catalog backing the service.
func (s *SessionService) Catalog() Catalog {
	return s.catalog
}

// StartSession creates a session in the initial state.
func (s *SessionService) StartSession() Snapshot {
	now := s.now()
	sess := &session{
		id:        uuid.New(),
		createdAt: now,
		updatedAt: now,
		state:     workstation.InitialState(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.snapshot()
}

// EndSession discards a session and closes its notification stream.
func (s *SessionService) EndSession(id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if s.notifier != nil {
		s.notifier.SessionEnded(id)
	}
	return nil
}

// Exists reports whether id names a live session.
func (s *SessionService) Exists(id uuid.UUID) bool {
	_, err := s.get(id)
	return err == nil
}

// Snapshot returns the current state of a session.
func (s *SessionService) Snapshot(id uuid.UUID) (Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Navigate switches the session to view.
func (s *SessionService) Navigate(id uuid.UUID, view string) (*Result, error) {
	if !enum.IsValidView(view) {
		return nil, ErrInvalidView
	}
	return s.apply(id, func(workstation.State) (workstation.Action, error) {
		return workstation.Navigate(view), nil
	})
}

// Scan acquires a product and records it as the session's scanned product.
// An empty barcode uses the service's scanner; otherwise the barcode is
// resolved through the catalog.
func (s *SessionService) Scan(ctx context.Context, id uuid.UUID, barcode string) (*Result, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}

	scanner := s.scanner
	if barcode != "" {
		scanner = catalog.BarcodeScanner(s.catalog, barcode)
	}
	product, err := scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	return s.apply(id, func(workstation.State) (workstation.Action, error) {
		return workstation.Scan(product), nil
	})
}

// AddToOrder appends a product to the session's pending order. An empty
// productID adds the currently scanned product.
func (s *SessionService) AddToOrder(id uuid.UUID, productID string) (*Result, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}

	var product catalog.Product
	if productID != "" {
		p, err := s.catalog.Get(productID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		product = p
	}

	return s.apply(id, func(st workstation.State) (workstation.Action, error) {
		if productID != "" {
			return workstation.AddToOrder(product), nil
		}
		if st.ScannedProduct == nil {
			return workstation.Action{}, ErrNothingScanned
		}
		return workstation.AddToOrder(*st.ScannedProduct), nil
	})
}

// CompleteOrder closes the session's pending order. Catalog stock is not
// changed.
func (s *SessionService) CompleteOrder(id uuid.UUID) (*Result, error) {
	return s.apply(id, func(workstation.State) (workstation.Action, error) {
		return workstation.CompleteOrder(), nil
	})
}

// OpenPlaceholder triggers a tile whose feature is not available yet.
func (s *SessionService) OpenPlaceholder(id uuid.UUID, feature string) (*Result, error) {
	if feature == "" {
		feature = enum.FeatureBoxUnpacking
	}
	return s.apply(id, func(workstation.State) (workstation.Action, error) {
		return workstation.OpenPlaceholder(feature), nil
	})
}

func (s *SessionService) get(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// apply builds an action from the session's current state and reduces it
// while holding the session lock, then publishes the notifications.
func (s *SessionService) apply(id uuid.UUID, build func(workstation.State) (workstation.Action, error)) (*Result, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	action, err := build(sess.state)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	next, notes := workstation.Reduce(sess.state, action)
	sess.state = next
	sess.updatedAt = s.now()
	snap := sess.snapshot()
	sess.mu.Unlock()

	if s.notifier != nil && len(notes) > 0 {
		s.notifier.Notify(id, notes)
	}

	return &Result{Snapshot: snap, Notifications: notes}, nil
}
