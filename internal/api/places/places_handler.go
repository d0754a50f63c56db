package places

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-pet-explorer/internal/api"
)

type PlacesHandler struct {
	placesService Service
	logger        *slog.Logger
}

func NewPlacesHandler(placesService Service, logger *slog.Logger) *PlacesHandler {
	return &PlacesHandler{
		placesService: placesService,
		logger:        logger,
	}
}

// Search runs the full search fallback chain without generating a guide.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	q := r.URL.Query()
	city := q.Get("city")
	country := q.Get("country")
	interests := q.Get("interests")
	if city == "" || country == "" || interests == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city, country and interests are required")
		return
	}

	maxResults := 0
	if raw := q.Get("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "max_results must be a positive integer")
			return
		}
		maxResults = parsed
	}

	results := h.placesService.SmartSearch(ctx, interests, city, country, maxResults)
	l.DebugContext(ctx, "Search completed", slog.Int("results", len(results)))
	api.WriteJSONResponse(w, r, http.StatusOK, results)
}

// Details resolves a single place id to its full record.
func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Details", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/{placeID}"),
	))
	defer span.End()

	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place id is required")
		return
	}

	detail := h.placesService.GetDetails(ctx, placeID)
	if detail == nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "place not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, detail)
}
