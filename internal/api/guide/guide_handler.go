package guide

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-pet-explorer/internal/api"
	"github.com/FACorreiaa/go-pet-explorer/internal/api/auth"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

type GuideHandler struct {
	guideService Service
	logger       *slog.Logger
}

func NewGuideHandler(guideService Service, logger *slog.Logger) *GuideHandler {
	return &GuideHandler{
		guideService: guideService,
		logger:       logger,
	}
}

func (h *GuideHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// Explore runs the search-and-generate pipeline and optionally saves the
// resulting guide in the same call.
func (h *GuideHandler) Explore(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GuideHandler").Start(r.Context(), "Explore", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/explore"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Explore"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.ExploreRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.City == "" || req.Country == "" || req.Interests == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city, country and interests are required")
		return
	}

	draft, err := h.guideService.Explore(ctx, userID, req)
	if err != nil {
		// A superseding search cancelled this one; that is not a failure.
		if errors.Is(err, context.Canceled) {
			l.DebugContext(ctx, "Explore superseded by a newer search")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		l.ErrorContext(ctx, "Explore failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to generate guide")
		return
	}

	if req.Save {
		id, err := h.guideService.SaveGuide(ctx, types.Guide{
			UserID:    userID,
			City:      draft.City,
			Country:   draft.Country,
			Interests: draft.Interests,
			Content:   draft.Content,
		})
		if err != nil {
			l.ErrorContext(ctx, "Failed to save generated guide", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Guide generated but could not be saved")
			return
		}
		api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{"id": id, "guide": draft})
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, draft)
}

// SaveGuide stores a previously generated guide.
func (h *GuideHandler) SaveGuide(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GuideHandler").Start(r.Context(), "SaveGuide", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/guides"),
	))
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.SaveGuideRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Content == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "content is required")
		return
	}

	id, err := h.guideService.SaveGuide(ctx, types.Guide{
		UserID:    userID,
		City:      req.City,
		Country:   req.Country,
		Interests: req.Interests,
		Content:   req.Content,
	})
	if err != nil {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save guide")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{"id": id})
}

// GetGuides lists the user's saved guides, paginated.
func (h *GuideHandler) GetGuides(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GuideHandler").Start(r.Context(), "GetGuides")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	resp, err := h.guideService.GetGuides(ctx, userID, page, pageSize)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list guides")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetGuide returns a single saved guide.
func (h *GuideHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GuideHandler").Start(r.Context(), "GetGuide")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	guideID, err := uuid.Parse(chi.URLParam(r, "guideID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid guide ID format")
		return
	}

	guide, err := h.guideService.GetGuide(ctx, userID, guideID)
	if err != nil {
		if errors.Is(err, ErrGuideNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Guide not found")
			return
		}
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get guide")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, guide)
}

// DeleteGuide removes a saved guide.
func (h *GuideHandler) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GuideHandler").Start(r.Context(), "DeleteGuide")
	defer span.End()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	guideID, err := uuid.Parse(chi.URLParam(r, "guideID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid guide ID format")
		return
	}

	if err := h.guideService.DeleteGuide(ctx, userID, guideID); err != nil {
		if errors.Is(err, ErrGuideNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Guide not found")
			return
		}
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete guide")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
