package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Engine is the settlement engine behind the API
type Engine interface {
	Initialize(context.Context, types.MsgInitialize) (*types.MsgInitializeResponse, error)
	OpenTraderAccount(context.Context, types.MsgOpenTraderAccount) (*types.MsgOpenTraderAccountResponse, error)
	OpenLiquidityAccount(context.Context, types.MsgOpenLiquidityAccount) (*types.MsgOpenLiquidityAccountResponse, error)
	Stake(context.Context, types.MsgStake) (*types.MsgStakeResponse, error)
	VerifyPriority(context.Context, types.MsgVerifyPriority) (*types.MsgVerifyPriorityResponse, error)
	BatchStakeAndVerify(context.Context, types.MsgBatchStakeAndVerify) (*types.MsgBatchStakeAndVerifyResponse, error)
	RevealTrade(context.Context, types.MsgRevealTrade) (*types.MsgRevealTradeResponse, error)
	Unstake(context.Context, types.MsgUnstake) (*types.MsgUnstakeResponse, error)
	ProvideLiquidity(context.Context, types.MsgProvideLiquidity) (*types.MsgProvideLiquidityResponse, error)
	UpdateParams(context.Context, types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error)
	AllocateBandwidth(ctx context.Context, trader string) (types.BandwidthAllocation, error)
	Mint(ctx context.Context, addr string, amount uint64) (sdk.Coin, error)

	Params(context.Context) (*types.QueryParamsResponse, error)
	GlobalState(context.Context) (*types.QueryGlobalStateResponse, error)
	Trader(context.Context, types.QueryTraderRequest) (*types.QueryTraderResponse, error)
	LiquidityAccount(context.Context, types.QueryLiquidityAccountRequest) (*types.QueryLiquidityAccountResponse, error)
	Bandwidth(context.Context, types.QueryBandwidthRequest) (*types.QueryBandwidthResponse, error)
	SlashRecords(context.Context, types.QuerySlashRecordsRequest) (*types.QuerySlashRecordsResponse, error)
	Balance(ctx context.Context, addr string) (sdk.Coin, error)
	VaultBalances(ctx context.Context) (map[string]sdk.Coin, error)
	Height() int64
}

// Server represents the main API server
type Server struct {
	router      *gin.Engine
	engine      Engine
	config      *Config
	authService *AuthService
	logger      log.Logger
}

// Config holds server configuration
type Config struct {
	Listen          string
	JWTSecret       []byte
	RateLimitRPS    int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	EnableFaucet    bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:1318",
		RateLimitRPS:    100,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  10 * time.Second,
	}
}

// NewServer creates a new API server instance
func NewServer(engine Engine, config *Config, logger log.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	logger = logger.With("module", "api")

	if len(config.JWTSecret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Warn("JWT secret generated randomly; tokens will not survive a restart")
	}

	server := &Server{
		engine:      engine,
		config:      config,
		authService: NewAuthService(config.JWTSecret),
		logger:      logger,
	}
	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// order matters: recovery first, rate limiting before handlers
	s.router.Use(gin.Recovery())
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestSizeLimitMiddleware(MaxRequestSize))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(RateLimitMiddleware(s.config.RateLimitRPS))
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.router.GET("/health", s.healthCheck)

	s.registerRoutes()
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler { return s.router }

// AuthService returns the token issuer and validator
func (s *Server) AuthService() *AuthService { return s.authService }

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"height":    s.engine.Height(),
	})
}

// Start serves the API until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.router,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "listen", s.config.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
