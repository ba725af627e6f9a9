package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cache"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/scanner"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is one checkout screen: a cart, its product snapshot and a scanner feeding it.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Cart      *cart.Cart
	Directory ProductDirectory
	Scanner   *scanner.Scanner
}

type SessionService interface {
	Open(ctx context.Context) (*Session, error)
	Get(id uuid.UUID) (*Session, error)
	Close(id uuid.UUID) error
	Count() int
}

type sessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	client   backend.Client
	cache    cache.Cache
	cfg      config.CacheConfig
	resolver ScanResolutionService
	taxRate  decimal.Decimal
}

func NewSessionService(client backend.Client, c cache.Cache, cfg config.CacheConfig, resolver ScanResolutionService, taxRate decimal.Decimal) SessionService {
	return &sessionService{
		sessions: make(map[uuid.UUID]*Session),
		client:   client,
		cache:    c,
		cfg:      cfg,
		resolver: resolver,
		taxRate:  taxRate,
	}
}

// Open loads the catalog and wires a fresh cart and scanner together.
func (s *sessionService) Open(ctx context.Context) (*Session, error) {
	directory := NewProductDirectory(s.client, s.cache, s.cfg)
	if err := directory.Refresh(ctx); err != nil {
		return nil, err
	}

	c := cart.New(directory, s.taxRate)

	emit := func(_ context.Context, item scanner.Resolved) error {
		directory.Remember(item.Product)
		return c.AddItem(item.Product, item.Size)
	}

	session := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Cart:      c,
		Directory: directory,
		Scanner:   scanner.New(s.resolver, directory, emit),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	middleware.LoggerFromContext(ctx).Info("Session opened",
		slog.String("session_id", session.ID.String()),
		slog.Int("catalog_size", len(directory.Products())),
	)

	return session, nil
}

func (s *sessionService) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFoundError("Session not found")
	}

	return session, nil
}

// Close discards the session and abandons anything the scanner was waiting on.
func (s *sessionService) Close(id uuid.UUID) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errors.NotFoundError("Session not found")
	}

	session.Scanner.Reset()

	return nil
}

func (s *sessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
