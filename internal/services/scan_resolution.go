package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cache"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
)

type ScanResolutionService interface {
	ScanImage(ctx context.Context, image backend.Image) (*models.ScanOutcome, error)
	FetchSizeOptions(ctx context.Context, productID string) []models.SizeOption
	SearchByText(ctx context.Context, query string) ([]models.Product, error)
}

type scanResolutionService struct {
	client      backend.Client
	cache       cache.Cache
	cfg         config.CacheConfig
	searchLimit int
}

func NewScanResolutionService(client backend.Client, c cache.Cache, cfg config.CacheConfig, searchLimit int) ScanResolutionService {
	if searchLimit <= 0 {
		searchLimit = 10
	}

	return &scanResolutionService{client: client, cache: c, cfg: cfg, searchLimit: searchLimit}
}

// ScanImage classifies the recognizer's answer. Only transport and processing failures are errors.
func (s *scanResolutionService) ScanImage(ctx context.Context, image backend.Image) (*models.ScanOutcome, error) {
	logger := middleware.LoggerFromContext(ctx)

	result, err := s.client.ScanImage(ctx, image)
	if err != nil {
		logger.Error("Image recognition call failed", slog.String("error", err.Error()))
		if backend.IsUnauthorized(err) {
			return nil, errors.UnauthorizedError("Backend rejected the session token").WithError(err)
		}
		return nil, errors.TransportError("Could not reach the recognition service").WithError(err)
	}

	alternatives := make([]models.Match, 0, len(result.Alternatives))
	for _, m := range result.Alternatives {
		if m.ProductID != "" {
			alternatives = append(alternatives, m)
		}
	}
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].MatchScore > alternatives[j].MatchScore
	})

	outcome := &models.ScanOutcome{SearchTerms: result.SearchTerms, Alternatives: alternatives}

	switch {
	case !result.Success && len(result.SearchTerms) == 0:
		logger.Warn("Recognizer could not process the image")
		return nil, errors.TransportError("Image could not be processed, please try again")
	case result.Success && result.PrimaryMatch != nil && result.PrimaryMatch.ProductID != "":
		outcome.Kind = models.ScanMatched
		outcome.Primary = result.PrimaryMatch
	case result.Success && len(alternatives) > 0:
		outcome.Kind = models.ScanAmbiguous
	default:
		outcome.Kind = models.ScanNoMatch
		outcome.Alternatives = nil
	}

	logger.Info("Image recognized",
		slog.String("outcome", string(outcome.Kind)),
		slog.Int("alternatives", len(outcome.Alternatives)),
	)

	return outcome, nil
}

// FetchSizeOptions never fails. Any error degrades to an empty list.
func (s *scanResolutionService) FetchSizeOptions(ctx context.Context, productID string) []models.SizeOption {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.SizesKeyPrefix, productID)

	var sizes []models.SizeOption
	if found, err := s.cache.Get(ctx, key, &sizes); err == nil && found {
		return sizes
	}

	sizes, err := s.client.GetSizeOptions(ctx, productID)
	if err != nil {
		logger.Warn("Failed to fetch size options", slog.String("product_id", productID), slog.String("error", err.Error()))
		return []models.SizeOption{}
	}

	if len(sizes) > 0 {
		if err := s.cache.Set(ctx, key, sizes, s.cfg.SizesTTL); err != nil {
			logger.Warn("Failed to cache size options", slog.String("product_id", productID), slog.String("error", err.Error()))
		}
	}

	if sizes == nil {
		sizes = []models.SizeOption{}
	}

	return sizes
}

// SearchByText returns an empty, non-nil slice when nothing matches.
func (s *scanResolutionService) SearchByText(ctx context.Context, query string) ([]models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.AddValidationError("query", "must not be empty")
	}

	products, err := s.client.SearchProducts(ctx, query, s.searchLimit)
	if err != nil {
		logger.Error("Product search failed", slog.String("query", query), slog.String("error", err.Error()))
		return nil, errors.TransportError("Product search failed").WithError(err)
	}

	if products == nil {
		products = []models.Product{}
	}

	return products, nil
}
