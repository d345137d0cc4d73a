//go:build unit

package handler_test

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"storefront-api/internal/handler"
	"storefront-api/internal/handler/api"
	"storefront-api/internal/handler/middleware"
	"storefront-api/internal/infra/edgecache"
	"storefront-api/internal/pkg/clock"
	"storefront-api/internal/pkg/config"
	"storefront-api/internal/pkg/jwt"
	"storefront-api/internal/usecase"
	"storefront-api/internal/usecase/queries"
	"storefront-api/tests/common/httptest"
	commandsmock "storefront-api/tests/mock/commands"
	queriesmock "storefront-api/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// RouterTestSuite exercises the fully wired engine, middleware chain included,
// the way production requests traverse it.
type RouterTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockCatalog      *queriesmock.MockCatalogQueries
	mockCartQueries  *queriesmock.MockCartQueries
	mockCartCommands *commandsmock.MockCartCommands
	jwtService       *jwt.Service
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	cfg := config.NewTestConfig()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCatalog = queriesmock.NewMockCatalogQueries(s.mockCtrl)
	s.mockCartQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.mockCartCommands = commandsmock.NewMockCartCommands(s.mockCtrl)

	s.jwtService = jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenDuration)

	logger := slog.New(slog.DiscardHandler)
	edgeStore := edgecache.NewMemoryStore(clock.NewRealClock())

	handler.NewRouter(
		s.router,
		cfg,
		api.NewCatalogHandler(s.mockCatalog),
		api.NewCartHandler(s.mockCartCommands, s.mockCartQueries),
		middleware.NewAuthMiddleware(usecase.NewTokenValidator(s.jwtService)),
		edgeStore,
		logger,
	)
}

func (s *RouterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) TestHealth() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"ok"`)
}

// The cached catalog routes must serve the origin's body, not a stub: the
// second request hits the edge cache and has to carry the exact payload the
// first one produced.
func (s *RouterTestSuite) TestCachedRouteServesOriginBodyOnHit() {
	views := []*queries.ProductView{
		{ID: uuid.New(), Name: "Shirt", Price: 100, DiscountedPrice: 100, CreatedAt: time.Now().UTC()},
	}
	s.mockCatalog.EXPECT().ListProducts(gomock.Any()).Return(views, nil).Times(1)

	first := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/product/list", nil, "")
	s.Require().Equal(http.StatusOK, first.Code)
	s.Equal("MISS", first.Header().Get("X-Edge-Cache"))
	s.Contains(first.Body.String(), `"Shirt"`)

	second := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/product/list", nil, "")
	s.Require().Equal(http.StatusOK, second.Code)
	s.Equal("HIT", second.Header().Get("X-Edge-Cache"))
	s.NotEmpty(second.Body.String())
	s.Equal(first.Body.String(), second.Body.String())
}

func (s *RouterTestSuite) TestCachedMetaRoute() {
	ts := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s.mockCatalog.EXPECT().ProductMeta(gomock.Any()).
		Return(&queries.CollectionMeta{Count: 12, LatestUpdatedAt: &ts}, nil).Times(1)

	first := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/product/meta", nil, "")
	s.Require().Equal(http.StatusOK, first.Code)
	s.Contains(first.Body.String(), `"count":12`)

	second := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/product/meta", nil, "")
	s.Equal("HIT", second.Header().Get("X-Edge-Cache"))
	s.Equal(first.Body.String(), second.Body.String())
}

func (s *RouterTestSuite) TestCartRouteRequiresValidToken() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart/get", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart/get", nil, "garbage-token")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestCartRouteResolvesUserFromToken() {
	userID := uuid.New()
	token, err := s.jwtService.GenerateToken(userID)
	s.Require().NoError(err)

	s.mockCartQueries.EXPECT().GetCart(gomock.Any(), userID).Return(nil, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart/get", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"cartData":{}`)
}
