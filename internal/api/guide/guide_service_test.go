package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

// MockPlacesService is a mock implementation of places.Service
type MockPlacesService struct {
	mock.Mock
}

func (m *MockPlacesService) SmartSearch(ctx context.Context, interests, city, country string, maxResults int) []types.PlaceDetail {
	args := m.Called(ctx, interests, city, country, maxResults)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.PlaceDetail)
}

func (m *MockPlacesService) GetDetails(ctx context.Context, placeID string) *types.PlaceDetail {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.PlaceDetail)
}

// MockGenerator is a mock implementation of ContentGenerator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	args := m.Called(ctx, systemInstruction, prompt)
	return args.String(0), args.Error(1)
}

// MockGuideRepository is a mock implementation of Repository
type MockGuideRepository struct {
	mock.Mock
}

func (m *MockGuideRepository) SaveGuide(ctx context.Context, guide types.Guide) (uuid.UUID, error) {
	args := m.Called(ctx, guide)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockGuideRepository) GetGuide(ctx context.Context, userID, guideID uuid.UUID) (*types.Guide, error) {
	args := m.Called(ctx, userID, guideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Guide), args.Error(1)
}

func (m *MockGuideRepository) GetGuides(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Guide, int, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]types.Guide), args.Int(1), args.Error(2)
}

func (m *MockGuideRepository) DeleteGuide(ctx context.Context, userID, guideID uuid.UUID) error {
	args := m.Called(ctx, userID, guideID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func newTestService(placesSvc *MockPlacesService, gen *MockGenerator, repo *MockGuideRepository) *ServiceImpl {
	return NewServiceImpl(placesSvc, gen, repo, 10, testLogger())
}

func TestFormatGuide_EmptyModelResponseIsNotAnError(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockPlacesService), gen, new(MockGuideRepository))

	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	content, err := svc.FormatGuide(context.Background(), []types.PlaceDetail{{Name: "Bar Perruno"}}, "restaurantes")

	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestFormatGuide_ModelErrorPropagates(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockPlacesService), gen, new(MockGuideRepository))

	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("model overloaded"))

	_, err := svc.FormatGuide(context.Background(), []types.PlaceDetail{{Name: "Bar Perruno"}}, "restaurantes")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestFormatGuide_CapsPlacesAtTen(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockPlacesService), gen, new(MockGuideRepository))

	var placeList []types.PlaceDetail
	for i := 0; i < 14; i++ {
		placeList = append(placeList, types.PlaceDetail{Name: fmt.Sprintf("Sitio %d", i)})
	}

	var captured string
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.String(2) }).
		Return("ok", nil)

	_, err := svc.FormatGuide(context.Background(), placeList, "parques")
	require.NoError(t, err)

	var payload []map[string]any
	start := strings.Index(captured, "[")
	end := strings.LastIndex(captured, "]")
	require.True(t, start >= 0 && end > start, "prompt should embed a JSON array")
	require.NoError(t, json.Unmarshal([]byte(captured[start:end+1]), &payload))
	assert.Len(t, payload, 10)
}

func TestFormatGuide_OmitsBlankContactFields(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockPlacesService), gen, new(MockGuideRepository))

	rating := 4.5
	placeList := []types.PlaceDetail{
		{
			Name:        "Cafetería Canina",
			Address:     strPtr("Plaza Mayor 2"),
			PhoneNumber: strPtr("  "),
			Website:     strPtr(""),
			Rating:      &rating,
		},
	}

	var captured string
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.String(2) }).
		Return("ok", nil)

	_, err := svc.FormatGuide(context.Background(), placeList, "cafeterias")
	require.NoError(t, err)

	assert.Contains(t, captured, `"name":"Cafetería Canina"`)
	assert.Contains(t, captured, `"rating":4.5`)
	assert.NotContains(t, captured, `"phone"`)
	assert.NotContains(t, captured, `"website"`)
}

func TestFormatGuide_RewritesPhoneLines(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockPlacesService), gen, new(MockGuideRepository))

	raw := "### Bar Perruno\n- Teléfono: +34 600 123 456\n- Web: https://barperruno.es"
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)

	content, err := svc.FormatGuide(context.Background(), []types.PlaceDetail{{Name: "Bar Perruno"}}, "restaurantes")

	require.NoError(t, err)
	assert.Contains(t, content, "- Teléfono: [+34 600 123 456](tel:+34600123456)")
	assert.Contains(t, content, "- Web: https://barperruno.es")
}

func TestLinkifyPhones(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"international number",
			"- Teléfono: +34 600 123 456",
			"- Teléfono: [+34 600 123 456](tel:+34600123456)",
		},
		{
			"national number",
			"- Teléfono: 912 345 678",
			"- Teléfono: [912 345 678](tel:912345678)",
		},
		{
			"indented list item",
			"  - Teléfono: +34 600 123 456",
			"  - Teléfono: [+34 600 123 456](tel:+34600123456)",
		},
		{
			"already linked line is untouched",
			"- Teléfono: [+34 600 123 456](tel:+34600123456)",
			"- Teléfono: [+34 600 123 456](tel:+34600123456)",
		},
		{
			"unrelated lines are untouched",
			"- Dirección: Calle Mayor 1",
			"- Dirección: Calle Mayor 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, linkifyPhones(tt.in))
		})
	}
}

func TestLinkifyPhones_Idempotent(t *testing.T) {
	in := "### Bar Perruno\n- Teléfono: +34 600 123 456\n\n### Parque del Retiro\n- Teléfono: 912 345 678"
	once := linkifyPhones(in)
	assert.Equal(t, once, linkifyPhones(once))
}

func TestExplore_EnrichesRecordsMissingContactInfo(t *testing.T) {
	placesSvc := new(MockPlacesService)
	gen := new(MockGenerator)
	svc := newTestService(placesSvc, gen, new(MockGuideRepository))
	userID := uuid.New()

	bare := types.PlaceDetail{PlaceID: strPtr("A"), Name: "Bar Perruno"}
	full := types.PlaceDetail{
		PlaceID:     strPtr("A"),
		Name:        "Bar Perruno",
		PhoneNumber: strPtr("+34 600 123 456"),
		Website:     strPtr("https://barperruno.es"),
	}

	placesSvc.On("SmartSearch", mock.Anything, "restaurantes", "Madrid", "España", 10).
		Return([]types.PlaceDetail{bare}, nil)
	placesSvc.On("GetDetails", mock.Anything, "A").Return(&full, nil)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("guía", nil)

	draft, err := svc.Explore(context.Background(), userID, types.ExploreRequest{
		City: "Madrid", Country: "España", Interests: "restaurantes",
	})

	require.NoError(t, err)
	require.Len(t, draft.Places, 1)
	require.NotNil(t, draft.Places[0].PhoneNumber)
	assert.Equal(t, "+34 600 123 456", *draft.Places[0].PhoneNumber)
	assert.Equal(t, "guía", draft.Content)
}

func TestExplore_FailedEnrichmentKeepsOriginalRecord(t *testing.T) {
	placesSvc := new(MockPlacesService)
	gen := new(MockGenerator)
	svc := newTestService(placesSvc, gen, new(MockGuideRepository))

	bare := types.PlaceDetail{PlaceID: strPtr("A"), Name: "Bar Perruno"}

	placesSvc.On("SmartSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.PlaceDetail{bare}, nil)
	placesSvc.On("GetDetails", mock.Anything, "A").Return(nil, nil)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("guía", nil)

	draft, err := svc.Explore(context.Background(), uuid.New(), types.ExploreRequest{
		City: "Madrid", Country: "España", Interests: "restaurantes",
	})

	require.NoError(t, err)
	require.Len(t, draft.Places, 1)
	assert.Equal(t, "Bar Perruno", draft.Places[0].Name)
}

func TestExplore_NewSearchCancelsPrevious(t *testing.T) {
	placesSvc := new(MockPlacesService)
	gen := new(MockGenerator)
	svc := newTestService(placesSvc, gen, new(MockGuideRepository))
	userID := uuid.New()

	firstStarted := make(chan struct{})
	placesSvc.On("SmartSearch", mock.Anything, "playas", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(firstStarted)
			ctx := args.Get(0).(context.Context)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		}).
		Return([]types.PlaceDetail{}, nil)
	placesSvc.On("SmartSearch", mock.Anything, "parques", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.PlaceDetail{}, nil)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("guía", nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Explore(context.Background(), userID, types.ExploreRequest{
			City: "Cádiz", Country: "España", Interests: "playas",
		})
	}()

	<-firstStarted
	draft, err := svc.Explore(context.Background(), userID, types.ExploreRequest{
		City: "Madrid", Country: "España", Interests: "parques",
	})
	wg.Wait()

	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.ErrorIs(t, firstErr, context.Canceled)
}

func TestExplore_IndependentUsersDoNotCancelEachOther(t *testing.T) {
	placesSvc := new(MockPlacesService)
	gen := new(MockGenerator)
	svc := newTestService(placesSvc, gen, new(MockGuideRepository))

	placesSvc.On("SmartSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.PlaceDetail{}, nil)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("guía", nil)

	_, err1 := svc.Explore(context.Background(), uuid.New(), types.ExploreRequest{City: "Madrid", Country: "España", Interests: "parques"})
	_, err2 := svc.Explore(context.Background(), uuid.New(), types.ExploreRequest{City: "Oporto", Country: "Portugal", Interests: "playas"})

	assert.NoError(t, err1)
	assert.NoError(t, err2)
}

func TestSaveGuide_WrapsRepositoryErrors(t *testing.T) {
	repo := new(MockGuideRepository)
	svc := newTestService(new(MockPlacesService), new(MockGenerator), repo)

	repo.On("SaveGuide", mock.Anything, mock.Anything).
		Return(uuid.Nil, errors.New("connection reset"))

	_, err := svc.SaveGuide(context.Background(), types.Guide{City: "Madrid"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save guide")
}

func TestGetGuides_NormalizesPagination(t *testing.T) {
	repo := new(MockGuideRepository)
	svc := newTestService(new(MockPlacesService), new(MockGenerator), repo)
	userID := uuid.New()

	repo.On("GetGuides", mock.Anything, userID, 1, 10).
		Return([]types.Guide{{City: "Madrid"}}, 1, nil)

	resp, err := svc.GetGuides(context.Background(), userID, 0, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 1, resp.TotalRecords)
	require.Len(t, resp.Guides, 1)
}
