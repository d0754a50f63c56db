package places

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-pet-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

const (
	defaultMaxResults   = 10
	defaultNearbyRadius = 20000
	defaultBiasedRadius = 10000
)

var _ Service = (*ServiceImpl)(nil)

// Service runs the place-search fallback chain and per-place detail lookups.
type Service interface {
	// SmartSearch never fails: branches that error out contribute zero
	// records and the merged result of the surviving branches is returned.
	SmartSearch(ctx context.Context, interests, city, country string, maxResults int) []types.PlaceDetail
	// GetDetails returns nil when the lookup fails for any reason.
	GetDetails(ctx context.Context, placeID string) *types.PlaceDetail
}

type ServiceImpl struct {
	logger       *slog.Logger
	client       Client
	cache        *cache.Cache
	nearbyRadius int
	biasedRadius int
}

// Option adjusts search tuning on the service.
type Option func(*ServiceImpl)

func WithRadii(nearby, biased int) Option {
	return func(s *ServiceImpl) {
		if nearby > 0 {
			s.nearbyRadius = nearby
		}
		if biased > 0 {
			s.biasedRadius = biased
		}
	}
}

func NewServiceImpl(client Client, logger *slog.Logger, opts ...Option) *ServiceImpl {
	s := &ServiceImpl{
		logger:       logger,
		client:       client,
		cache:        cache.New(24*time.Hour, 1*time.Hour),
		nearbyRadius: defaultNearbyRadius,
		biasedRadius: defaultBiasedRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SmartSearch runs the ordered fallback chain: find-place-from-text with
// per-candidate detail lookups, plain text search, geo-biased nearby search
// keyed by interest category, and an English-language fallback query. Results
// are merged in production order, deduplicated keeping the first occurrence
// of each place id, and capped at maxResults.
func (s *ServiceImpl) SmartSearch(ctx context.Context, interests, city, country string, maxResults int) []types.PlaceDetail {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SmartSearch", trace.WithAttributes(
		attribute.String("search.city", city),
		attribute.String("search.country", country),
		attribute.Int("search.max_results", maxResults),
	))
	defer span.End()

	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	start := time.Now()
	l := s.logger.With(slog.String("city", city), slog.String("country", country))

	query := fmt.Sprintf("%s %s %s", interests, city, country)
	var collected []types.PlaceDetail

	// 1. Find-place-from-text, then resolve every candidate id to details.
	ids, err := s.client.FindPlaceFromText(ctx, query)
	if err != nil {
		l.WarnContext(ctx, "find-place-from-text failed, continuing", slog.Any("error", err))
		metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
	} else {
		collected = append(collected, s.fetchDetailsBatch(ctx, ids)...)
	}

	// 2. Plain text search with the same raw query.
	hits, err := s.client.TextSearch(ctx, query, nil, 0)
	if err != nil {
		l.WarnContext(ctx, "text search failed, continuing", slog.Any("error", err))
		metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
	} else {
		collected = append(collected, hits...)
	}

	// 3. Geo-biased searches, only while still short of the target.
	if len(collected) < maxResults {
		location, err := s.geocode(ctx, fmt.Sprintf("%s, %s", city, country))
		if err != nil {
			// Both geo-biased calls depend on the coordinate; skip straight
			// to the linguistic fallback.
			l.WarnContext(ctx, "geocoding failed, skipping nearby search", slog.Any("error", err))
			metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
		} else {
			if cat, ok := matchNearbyCategory(interests); ok {
				hits, err := s.client.NearbySearch(ctx, *location, s.nearbyRadius, cat.placeType, cat.keyword)
				if err != nil {
					l.WarnContext(ctx, "nearby search failed, continuing", slog.Any("error", err))
					metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
				} else {
					collected = append(collected, hits...)
				}
			}

			hits, err := s.client.TextSearch(ctx, query, location, s.biasedRadius)
			if err != nil {
				l.WarnContext(ctx, "biased text search failed, continuing", slog.Any("error", err))
				metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
			} else {
				collected = append(collected, hits...)
			}
		}
	}

	// 4. English-language fallback query.
	if len(collected) < maxResults {
		alt := fallbackQuery(interests, city, country)
		hits, err := s.client.TextSearch(ctx, alt, nil, 0)
		if err != nil {
			l.WarnContext(ctx, "fallback text search failed, continuing", slog.Any("error", err))
			metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
		} else {
			collected = append(collected, hits...)
		}
	}

	results := truncate(dedupeByPlaceID(collected), maxResults)

	metrics.Get().SearchRequestsTotal.Add(ctx, 1)
	metrics.Get().SearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("search.results", len(results)))
	span.SetStatus(codes.Ok, "Search completed")
	l.DebugContext(ctx, "Smart search completed",
		slog.Int("collected", len(collected)),
		slog.Int("returned", len(results)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return results
}

// GetDetails resolves a place id to a full record, caching successes.
// Any transport or parse failure is logged and reported as a nil record.
func (s *ServiceImpl) GetDetails(ctx context.Context, placeID string) *types.PlaceDetail {
	cacheKey := "details:" + placeID
	if cached, found := s.cache.Get(cacheKey); found {
		detail := cached.(types.PlaceDetail)
		return &detail
	}

	detail, err := s.client.PlaceDetails(ctx, placeID)
	if err != nil {
		s.logger.WarnContext(ctx, "place details lookup failed",
			slog.String("place_id", placeID), slog.Any("error", err))
		metrics.Get().PlacesAPIErrorsTotal.Add(ctx, 1)
		return nil
	}

	s.cache.Set(cacheKey, *detail, cache.DefaultExpiration)
	return detail
}

// fetchDetailsBatch resolves candidate ids concurrently, preserving candidate
// order in the output. Failed lookups are dropped, never retried.
func (s *ServiceImpl) fetchDetailsBatch(ctx context.Context, ids []string) []types.PlaceDetail {
	if len(ids) == 0 {
		return nil
	}

	slots := make([]*types.PlaceDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			slots[i] = s.GetDetails(gctx, id)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	out := make([]types.PlaceDetail, 0, len(ids))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

func (s *ServiceImpl) geocode(ctx context.Context, address string) (*types.GeoPoint, error) {
	cacheKey := "geocode:" + address
	if cached, found := s.cache.Get(cacheKey); found {
		point := cached.(types.GeoPoint)
		return &point, nil
	}

	point, err := s.client.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, *point, cache.DefaultExpiration)
	return point, nil
}

// dedupeByPlaceID keeps the first occurrence of each place id. Records
// without an id are always kept, even when otherwise identical.
func dedupeByPlaceID(records []types.PlaceDetail) []types.PlaceDetail {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.PlaceDetail, 0, len(records))
	for _, rec := range records {
		if rec.PlaceID != nil {
			if _, dup := seen[*rec.PlaceID]; dup {
				continue
			}
			seen[*rec.PlaceID] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

func truncate(records []types.PlaceDetail, max int) []types.PlaceDetail {
	if len(records) > max {
		return records[:max]
	}
	return records
}
