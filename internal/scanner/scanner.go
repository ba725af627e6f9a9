// Package scanner drives a single terminal's scan flow: camera capture,
// disambiguation, manual search and size selection. Resolved products
// leave the machine through an Emitter and the machine returns to the camera.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
)

type Resolver interface {
	ScanImage(ctx context.Context, image backend.Image) (*models.ScanOutcome, error)
	FetchSizeOptions(ctx context.Context, productID string) []models.SizeOption
	SearchByText(ctx context.Context, query string) ([]models.Product, error)
}

type ProductSource interface {
	Get(ctx context.Context, productID string) (*models.Product, error)
}

// Resolved is a product ready for the cart. Size is empty for unsized products.
type Resolved struct {
	Product models.Product
	Size    string
}

// Emitter receives resolved products. It runs with the scanner locked and must not call back into it.
type Emitter func(ctx context.Context, item Resolved) error

type Scanner struct {
	mu         sync.Mutex
	state      State
	generation uint64
	resolver   Resolver
	products   ProductSource
	emit       Emitter
}

func New(resolver Resolver, products ProductSource, emit Emitter) *Scanner {
	return &Scanner{
		state:    Camera{},
		resolver: resolver,
		products: products,
		emit:     emit,
	}
}

func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Reset returns to a clean camera and discards any in-flight work. Safe to call from any state.
func (s *Scanner) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = Camera{}

	return s.state
}

// Capture uploads a frame and moves to the state the recognition outcome calls for.
// Recognition failures are not errors: they leave a Failure prompt on the camera.
func (s *Scanner) Capture(ctx context.Context, image backend.Image) (State, error) {
	logger := middleware.LoggerFromContext(ctx)

	gen, err := s.begin(func(st State) error {
		if st.Step() != StepCamera {
			return errors.ConflictError("Capture is only available from the camera")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.resolver.ScanImage(ctx, image)
	if err != nil {
		logger.Warn("Scan failed", slog.String("error", err.Error()))
		return s.commit(gen, Camera{Failure: &Failure{Kind: FailureTransport, Message: userMessage(err, "Could not process the image, please try again")}})
	}

	switch outcome.Kind {
	case models.ScanNoMatch:
		return s.commit(gen, Camera{Failure: &Failure{
			Kind:        FailureNoMatch,
			Message:     "No matching product found",
			SearchTerms: outcome.SearchTerms,
		}})
	case models.ScanAmbiguous:
		return s.commit(gen, Selection{Candidates: outcome.Alternatives, SearchTerms: outcome.SearchTerms})
	}

	if !s.current(gen) {
		return nil, superseded()
	}

	product, err := s.products.Get(ctx, outcome.Primary.ProductID)
	if err != nil {
		logger.Warn("Failed to load recognized product",
			slog.String("product_id", outcome.Primary.ProductID),
			slog.String("error", err.Error()),
		)

		failure := &Failure{Kind: FailureTransport, Message: userMessage(err, "Could not load the product, please try again")}
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			failure = &Failure{Kind: FailureNoMatch, Message: "Recognized product is not in the catalog", SearchTerms: outcome.SearchTerms}
		}

		return s.commit(gen, Camera{Failure: failure})
	}

	if !product.HasSizes {
		s.mu.Lock()
		defer s.mu.Unlock()

		if gen != s.generation {
			return nil, superseded()
		}

		if err := s.emitLocked(ctx, Resolved{Product: *product}); err != nil {
			s.state = Camera{Failure: &Failure{Kind: FailureRejected, Message: userMessage(err, "Could not add the product")}}
			return s.state, err
		}

		logger.Info("Scanned product added", slog.String("product_id", product.ID))

		return s.state, nil
	}

	sizes := s.sizesFor(ctx, product)
	if len(sizes) == 0 {
		logger.Warn("Sized product has no size options", slog.String("product_id", product.ID))
		return s.commit(gen, Camera{Failure: &Failure{
			Kind:        FailureNoSizes,
			Message:     noSizesMessage(product),
			SearchTerms: outcome.SearchTerms,
		}})
	}

	return s.commit(gen, newResult(*product, outcome.Primary.Confidence, SourceCamera, sizes))
}

// SwitchToManual leaves the camera or the candidate list for text search,
// seeding the query with whatever the recognizer extracted.
func (s *Scanner) SwitchToManual() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var terms []string

	switch st := s.state.(type) {
	case Camera:
		if st.Failure != nil {
			terms = st.Failure.SearchTerms
		}
	case Selection:
		terms = st.SearchTerms
	default:
		return nil, errors.ConflictError("Manual search is only available from the camera or the candidate list")
	}

	s.generation++
	s.state = Manual{Query: strings.Join(terms, " ")}

	return s.state, nil
}

// Search runs a text search. An empty result is a valid answer; transport errors leave the state as it was.
func (s *Scanner) Search(ctx context.Context, query string) (State, error) {
	gen, err := s.begin(func(st State) error {
		if st.Step() != StepManual {
			return errors.ConflictError("Search is only available in manual mode")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	products, err := s.resolver.SearchByText(ctx, query)
	if err != nil {
		return nil, err
	}

	if products == nil {
		products = []models.Product{}
	}

	return s.commit(gen, Manual{Query: strings.TrimSpace(query), Candidates: products, Searched: true})
}

// Choose picks a candidate from the selection list or the manual search results.
// A chosen product always goes through Result, even when it has no sizes. A
// sized product with no size options is refused and the list stays up.
func (s *Scanner) Choose(ctx context.Context, productID string) (State, error) {
	var (
		source     Source
		confidence float64
	)

	gen, err := s.begin(func(st State) error {
		switch cur := st.(type) {
		case Selection:
			match, ok := cur.find(productID)
			if !ok {
				return errors.AddValidationError("productId", "is not one of the candidates")
			}
			source = SourceSelection
			confidence = match.Confidence
			if confidence == 0 {
				confidence = match.MatchScore
			}
		case Manual:
			if !cur.has(productID) {
				return errors.AddValidationError("productId", "is not one of the search results")
			}
			source = SourceManual
		default:
			return errors.ConflictError("No candidates to choose from")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	var sizes []models.SizeOption
	if product.HasSizes {
		sizes = s.sizesFor(ctx, product)
		if len(sizes) == 0 {
			if !s.current(gen) {
				return nil, superseded()
			}
			return nil, errors.AddValidationError("size", noSizesMessage(product))
		}
	}

	return s.commit(gen, newResult(*product, confidence, source, sizes))
}

func (s *Scanner) SelectSize(value string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.state.(Result)
	if !ok {
		return nil, errors.ConflictError("No product is awaiting a size")
	}

	if !result.hasSize(value) {
		return nil, errors.AddValidationError("size", fmt.Sprintf("%q is not offered for %s", value, result.Product.Name))
	}

	result.SelectedSize = value
	s.state = result

	return s.state, nil
}

// Confirm emits the product on screen and returns to the camera. On emission failure the result stays up.
func (s *Scanner) Confirm(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.state.(Result)
	if !ok {
		return nil, errors.ConflictError("No product to confirm")
	}

	if len(result.Sizes) > 0 && result.SelectedSize == "" {
		return nil, errors.AddValidationError("size", "must be selected")
	}

	if err := s.emitLocked(ctx, Resolved{Product: result.Product, Size: result.SelectedSize}); err != nil {
		return s.state, err
	}

	return s.state, nil
}

// begin validates the current state and claims a new generation, superseding earlier async work.
func (s *Scanner) begin(check func(State) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := check(s.state); err != nil {
		return 0, err
	}

	s.generation++

	return s.generation, nil
}

func (s *Scanner) commit(gen uint64, next State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, superseded()
	}

	s.state = next

	return next, nil
}

func (s *Scanner) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return gen == s.generation
}

// must hold s.mu
func (s *Scanner) emitLocked(ctx context.Context, item Resolved) error {
	if err := s.emit(ctx, item); err != nil {
		return err
	}

	s.generation++
	s.state = Camera{}

	return nil
}

func (s *Scanner) sizesFor(ctx context.Context, product *models.Product) []models.SizeOption {
	sizes := s.resolver.FetchSizeOptions(ctx, product.ID)
	if len(sizes) == 0 {
		sizes = product.SizeOptions
	}

	return sizes
}

func noSizesMessage(product *models.Product) string {
	return fmt.Sprintf("No sizes are available for %s", product.Name)
}

func newResult(product models.Product, confidence float64, source Source, sizes []models.SizeOption) Result {
	result := Result{
		Product:    product,
		Confidence: confidence,
		Source:     source,
		Sizes:      sizes,
	}

	if len(sizes) > 0 {
		result.SelectedSize = sizes[0].Value
	}

	return result
}

func superseded() error {
	return errors.SupersededError("A newer scanner action replaced this one")
}

func userMessage(err error, fallback string) string {
	if appErr, ok := errors.IsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}

	return fallback
}
