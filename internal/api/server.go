package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/goldlab/assay-api/docs"
	v1 "github.com/goldlab/assay-api/internal/api/handler/v1"
	"github.com/goldlab/assay-api/internal/api/middleware"
	"github.com/goldlab/assay-api/internal/cache"
	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/metrics"
	"github.com/goldlab/assay-api/internal/report"
	"github.com/goldlab/assay-api/internal/repository"
	"github.com/goldlab/assay-api/internal/repository/dao"
	"github.com/goldlab/assay-api/internal/service"
)

const basePath = "/api/v1"

type Server struct {
	Config   *config.AppConfig
	Router   *gin.Engine
	Renderer *report.Renderer
	Metrics  *metrics.Metrics

	board        *v1.BoardHandler
	loginLimiter *middleware.RateLimiter
}

type repositories struct {
	users     *repository.UserRepository
	entries   *repository.EntryRepository
	tokens    *repository.TokenRepository
	skinTests *repository.SkinTestRepository
	exchanges *repository.ExchangeRepository
	expenses  *repository.ExpenseRepository
}

type handlers struct {
	health    *v1.HealthHandler
	auth      *v1.AuthHandler
	user      *v1.UserHandler
	entry     *v1.EntryHandler
	token     *v1.TokenHandler
	board     *v1.BoardHandler
	skinTest  *v1.SkinTestHandler
	exchange  *v1.ExchangeHandler
	expense   *v1.ExpenseHandler
	dashboard *v1.DashboardHandler

	users middleware.UserLookup
}

func NewServer(conf *config.AppConfig, db *gorm.DB, c *cache.Cache) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	renderer, err := report.NewRenderer(conf.Shop)
	if err != nil {
		return nil, fmt.Errorf("report.NewRenderer -> %w", err)
	}

	s := &Server{
		Config:       conf,
		Router:       engine,
		Renderer:     renderer,
		Metrics:      metrics.New(),
		loginLimiter: middleware.NewRateLimiter(conf.API.LoginRatePerMinute),
	}

	s.MountMiddlewares()

	h, err := s.initHandlers(db, initRepositories(db, c, conf.Shop.Location()))
	if err != nil {
		return nil, err
	}
	s.board = h.board
	s.MountHandlers(h)

	return s, nil
}

func initRepositories(db *gorm.DB, c *cache.Cache, loc *time.Location) repositories {
	return repositories{
		users:     repository.NewUserRepository(dao.NewUserDAO(db)),
		entries:   repository.NewEntryRepository(dao.NewEntryDAO(db), c),
		tokens:    repository.NewTokenRepository(dao.NewTokenDAO(db), loc),
		skinTests: repository.NewSkinTestRepository(dao.NewSkinTestDAO(db), loc),
		exchanges: repository.NewExchangeRepository(dao.NewExchangeDAO(db), loc),
		expenses:  repository.NewExpenseRepository(dao.NewExpenseDAO(db), c),
	}
}

func (s *Server) initHandlers(db *gorm.DB, repos repositories) (handlers, error) {
	loc := s.Config.Shop.Location()

	sqlDB, err := db.DB()
	if err != nil {
		return handlers{}, fmt.Errorf("db.DB -> %w", err)
	}

	// The board is built first: the token service publishes into it.
	board := v1.NewBoardHandler(nil, loc, s.Config.API.AllowedCORSDomains)
	tokenSvc := service.NewTokenService(repos.tokens, board, s.Metrics, s.Config.Shop.TokenStart, loc)
	board.SetService(tokenSvc)

	skinTestSvc := service.NewSkinTestService(repos.skinTests)
	exchangeSvc := service.NewExchangeService(repos.exchanges, repos.tokens, repos.skinTests, s.Config.Shop.Deduction())
	expenseSvc := service.NewExpenseService(repos.expenses, s.Metrics)
	dashboardSvc := service.NewDashboardService(repos.tokens, repos.skinTests, repos.exchanges, repos.expenses, loc)
	userSvc := service.NewUserService(repos.users)

	return handlers{
		health:    v1.NewHealthHandler(sqlDB),
		auth:      v1.NewAuthHandler(s.Config.API, service.NewAuthService(repos.users)),
		user:      v1.NewUserHandler(userSvc),
		entry:     v1.NewEntryHandler(service.NewEntryService(repos.entries, repos.tokens), s.Renderer, loc),
		token:     v1.NewTokenHandler(tokenSvc, s.Renderer, loc),
		board:     board,
		skinTest:  v1.NewSkinTestHandler(skinTestSvc, s.Renderer, loc),
		exchange:  v1.NewExchangeHandler(exchangeSvc, loc),
		expense:   v1.NewExpenseHandler(expenseSvc, loc),
		dashboard: v1.NewDashboardHandler(dashboardSvc, loc),
		users:     userSvc,
	}, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(s.Metrics.Middleware())
}

func (s *Server) MountHandlers(h handlers) {
	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey, h.users)

	public := s.Router.Group(basePath)
	{
		public.GET("/health", h.health.HandleHealthcheck)
		public.POST("/auth/login", s.loginLimiter.Handler(), h.auth.HandleLogin)
	}

	api := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		api.GET("/users/me", h.user.HandleGetMe)

		api.GET("/entries", h.entry.HandleListEntries)
		api.GET("/entries/:code", h.entry.HandleGetEntry)
		api.GET("/entries/:code/statement", h.entry.HandleGetStatement)
		api.POST("/entries", h.entry.HandleCreateEntry)
		api.PUT("/entries/:code", h.entry.HandleUpdateEntry)
		api.DELETE("/entries/:code", h.entry.HandleDeleteEntry)

		api.GET("/tokens", h.token.HandleListTokens)
		api.GET("/tokens/next", h.token.HandleNextTokenNo)
		api.GET("/tokens/export", h.token.HandleExportTokens)
		api.GET("/tokens/:tokenNo", h.token.HandleGetToken)
		api.GET("/tokens/:tokenNo/receipt", h.token.HandleGetReceipt)
		api.POST("/tokens", h.token.HandleCreateToken)
		api.PUT("/tokens/:tokenNo", h.token.HandleUpdateToken)
		api.PATCH("/tokens/:tokenNo/paid", h.token.HandleSetPaid)
		api.DELETE("/tokens/:tokenNo", h.token.HandleDeleteToken)

		api.GET("/board", h.board.HandleGetBoard)
		api.GET("/board/ws", h.board.HandleWebSocket)

		api.GET("/skin-tests", h.skinTest.HandleListSkinTests)
		api.GET("/skin-tests/export", h.skinTest.HandleExportSkinTests)
		api.GET("/skin-tests/:tokenNo", h.skinTest.HandleGetSkinTest)
		api.GET("/skin-tests/:tokenNo/report", h.skinTest.HandleGetSkinTestReport)
		api.POST("/skin-tests", h.skinTest.HandleCreateSkinTest)
		api.PUT("/skin-tests/:tokenNo", h.skinTest.HandleUpdateSkinTest)
		api.DELETE("/skin-tests/:tokenNo", h.skinTest.HandleDeleteSkinTest)

		api.GET("/pure-exchange", h.exchange.HandleListExchanges)
		api.GET("/pure-exchange/:tokenNo", h.exchange.HandleGetExchange)
		api.POST("/pure-exchange", h.exchange.HandleCreateExchange)
		api.PUT("/pure-exchange/:tokenNo", h.exchange.HandleUpdateExchange)
		api.DELETE("/pure-exchange/:tokenNo", h.exchange.HandleDeleteExchange)

		api.GET("/expense-types", h.expense.HandleListExpenseTypes)
		api.POST("/expense-types", h.expense.HandleCreateExpenseType)
		api.DELETE("/expense-types/:id", h.expense.HandleDeleteExpenseType)
		api.GET("/expenses", h.expense.HandleListExpenses)
		api.GET("/expenses/summary", h.expense.HandleGetExpenseSummary)
		api.GET("/expenses/export", h.expense.HandleExportExpenses)
		api.GET("/expenses/:id", h.expense.HandleGetExpense)
		api.POST("/expenses", h.expense.HandleCreateExpense)
		api.PUT("/expenses/:id", h.expense.HandleUpdateExpense)
		api.DELETE("/expenses/:id", h.expense.HandleDeleteExpense)

		api.GET("/dashboard", h.dashboard.HandleGetDashboard)
	}

	admin := s.Router.Group(basePath, authenticator.VerifyJWT(), middleware.RequireAdmin())
	{
		admin.GET("/users", h.user.HandleListUsers)
		admin.POST("/users", h.user.HandleCreateUser)
		admin.DELETE("/users/:userID", h.user.HandleDeleteUser)
	}

	if s.Config.Metrics != nil && s.Config.Metrics.Enabled {
		s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Assay shop API"
	docs.SwaggerInfo.Description = "Back office for a gold testing shop: tokens, skin tests, pure exchange and expenses."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// RunBackground starts the board hub and the login limiter sweep. Both stop
// when ctx is done.
func (s *Server) RunBackground(ctx context.Context) {
	go s.board.Run(ctx)
	s.loginLimiter.StartCleanup(time.Minute, ctx.Done())
}
