package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-pet-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/places"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

// guidePlacesCap bounds the number of places serialized into the prompt.
const guidePlacesCap = 10

var _ Service = (*ServiceImpl)(nil)

// ContentGenerator is the single model call the guide generator depends on.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Service turns a search tuple into a Markdown guide and manages saved guides.
type Service interface {
	Explore(ctx context.Context, userID uuid.UUID, req types.ExploreRequest) (*types.GuideDraft, error)
	FormatGuide(ctx context.Context, placeList []types.PlaceDetail, interests string) (string, error)
	SaveGuide(ctx context.Context, guide types.Guide) (uuid.UUID, error)
	GetGuide(ctx context.Context, userID, guideID uuid.UUID) (*types.Guide, error)
	GetGuides(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedGuidesResponse, error)
	DeleteGuide(ctx context.Context, userID, guideID uuid.UUID) error
}

type ServiceImpl struct {
	logger        *slog.Logger
	placesService places.Service
	generator     ContentGenerator
	guideRepo     Repository
	maxResults    int

	// one in-flight explore per user; a new one cancels its predecessor
	mu     sync.Mutex
	active map[uuid.UUID]*searchSession
}

type searchSession struct {
	cancel context.CancelFunc
}

func NewServiceImpl(placesService places.Service, generator ContentGenerator, guideRepo Repository, maxResults int, logger *slog.Logger) *ServiceImpl {
	if maxResults <= 0 {
		maxResults = guidePlacesCap
	}
	return &ServiceImpl{
		logger:        logger,
		placesService: placesService,
		generator:     generator,
		guideRepo:     guideRepo,
		maxResults:    maxResults,
		active:        make(map[uuid.UUID]*searchSession),
	}
}

// beginSearch registers a cancellable session for the user, cancelling any
// previous in-flight one. The returned cleanup must run when the search ends.
func (s *ServiceImpl) beginSearch(ctx context.Context, userID uuid.UUID) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sess := &searchSession{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.active[userID]; ok {
		prev.cancel()
	}
	s.active[userID] = sess
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if s.active[userID] == sess {
			delete(s.active, userID)
		}
		s.mu.Unlock()
		cancel()
	}
}

// Explore runs the whole pipeline: search, detail enrichment, guide
// generation. A superseding call for the same user cancels this one, which
// surfaces as context.Canceled with no partial result.
func (s *ServiceImpl) Explore(ctx context.Context, userID uuid.UUID, req types.ExploreRequest) (*types.GuideDraft, error) {
	ctx, span := otel.Tracer("GuideService").Start(ctx, "Explore", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("search.city", req.City),
	))
	defer span.End()

	ctx, done := s.beginSearch(ctx, userID)
	defer done()

	results := s.placesService.SmartSearch(ctx, req.Interests, req.City, req.Country, s.maxResults)
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "search superseded or cancelled")
		return nil, err
	}

	enriched := s.enrich(ctx, results)
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "search superseded or cancelled")
		return nil, err
	}

	content, err := s.FormatGuide(ctx, enriched, req.Interests)
	if err != nil {
		s.logger.ErrorContext(ctx, "Guide generation failed", slog.Any("error", err))
		span.RecordError(err)
		metrics.Get().GuideGenerationErrors.Add(ctx, 1)
		return nil, fmt.Errorf("failed to generate guide: %w", err)
	}

	metrics.Get().GuideGenerationsTotal.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Guide generated")
	return &types.GuideDraft{
		City:      req.City,
		Country:   req.Country,
		Interests: req.Interests,
		Content:   content,
		Places:    enriched,
	}, nil
}

// enrich fetches full details for every record that carries a place id but is
// missing contact fields. Lookups run concurrently; a failed lookup keeps the
// original record.
func (s *ServiceImpl) enrich(ctx context.Context, records []types.PlaceDetail) []types.PlaceDetail {
	out := make([]types.PlaceDetail, len(records))
	copy(out, records)

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		if out[i].PlaceID == nil || out[i].HasContactInfo() {
			continue
		}
		g.Go(func() error {
			if detail := s.placesService.GetDetails(gctx, *out[i].PlaceID); detail != nil {
				out[i] = *detail
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// guidePlacePayload is the compact shape serialized into the prompt.
type guidePlacePayload struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Phone   string   `json:"phone,omitempty"`
	Website string   `json:"website,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
}

// FormatGuide serializes up to guidePlacesCap places, makes one model call
// and post-processes phone numbers into tel: links. Model errors propagate.
func (s *ServiceImpl) FormatGuide(ctx context.Context, placeList []types.PlaceDetail, interests string) (string, error) {
	ctx, span := otel.Tracer("GuideService").Start(ctx, "FormatGuide", trace.WithAttributes(
		attribute.Int("places.count", len(placeList)),
	))
	defer span.End()

	if len(placeList) > guidePlacesCap {
		placeList = placeList[:guidePlacesCap]
	}

	payload := make([]guidePlacePayload, 0, len(placeList))
	for _, p := range placeList {
		entry := guidePlacePayload{Name: p.Name, Rating: p.Rating}
		if p.Address != nil {
			entry.Address = *p.Address
		}
		if p.PhoneNumber != nil && strings.TrimSpace(*p.PhoneNumber) != "" {
			entry.Phone = *p.PhoneNumber
		}
		if p.Website != nil && strings.TrimSpace(*p.Website) != "" {
			entry.Website = *p.Website
		}
		payload = append(payload, entry)
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize places: %w", err)
	}

	text, err := s.generator.GenerateContent(ctx, guideSystemInstruction(), buildGuidePrompt(interests, string(serialized)))
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetStatus(codes.Ok, "Guide formatted")
	return linkifyPhones(text), nil
}

// phoneLineRe matches unlinked phone lines: a dash, the label, then only
// digits, spaces and plus signs up to end of line. Linked lines contain
// brackets and no longer match, which makes the rewrite idempotent.
var phoneLineRe = regexp.MustCompile(`^(\s*-\s*Teléfono:\s*)([+0-9][0-9+ ]*?)\s*$`)

var nonDialableRe = regexp.MustCompile(`[^0-9]`)

// linkifyPhones rewrites "- Teléfono: +34 600 123 456" lines into Markdown
// links whose target keeps only the digits and a leading plus.
func linkifyPhones(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		m := phoneLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		number := m[2]
		target := nonDialableRe.ReplaceAllString(number, "")
		if strings.HasPrefix(strings.TrimSpace(number), "+") {
			target = "+" + target
		}
		lines[i] = fmt.Sprintf("%s[%s](tel:%s)", m[1], number, target)
	}
	return strings.Join(lines, "\n")
}

func (s *ServiceImpl) SaveGuide(ctx context.Context, guide types.Guide) (uuid.UUID, error) {
	id, err := s.guideRepo.SaveGuide(ctx, guide)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save guide", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to save guide: %w", err)
	}
	return id, nil
}

func (s *ServiceImpl) GetGuide(ctx context.Context, userID, guideID uuid.UUID) (*types.Guide, error) {
	guide, err := s.guideRepo.GetGuide(ctx, userID, guideID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get guide", slog.Any("error", err))
		return nil, err
	}
	return guide, nil
}

func (s *ServiceImpl) GetGuides(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedGuidesResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	guides, total, err := s.guideRepo.GetGuides(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list guides", slog.Any("error", err))
		return nil, fmt.Errorf("failed to retrieve guides: %w", err)
	}

	return &types.PaginatedGuidesResponse{
		Guides:       guides,
		TotalRecords: total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

func (s *ServiceImpl) DeleteGuide(ctx context.Context, userID, guideID uuid.UUID) error {
	if err := s.guideRepo.DeleteGuide(ctx, userID, guideID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete guide", slog.Any("error", err))
		return err
	}
	return nil
}
