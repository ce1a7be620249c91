// @title           Trading API Facade
// @version         1.0
// @description     REST facade over the upstream trading API: last prices, portfolio and limit orders

// @host      localhost:8080
// @BasePath  /api

package http

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appinterfaces "main/internal/application/interfaces"
	appinstruments "main/internal/application/service/instruments"
	appquotes "main/internal/application/service/quotes"
	apptrading "main/internal/application/service/trading"
	"main/internal/config"
	domaintrading "main/internal/domain/entity/trading"
)

const apiBasePath = "/api"

var errRouteNotFound = errors.New("Route not found")

type Handler struct {
	router   *gin.Engine
	quotes   *appquotes.Service
	trading  *apptrading.Service
	resolver *appinstruments.Resolver
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Logger

	defaultTicker string
	fallback      config.FallbackConfig
	hasToken      bool
}

var _ appinterfaces.HTTPHandler = (*Handler)(nil)

func NewHandler(quotesSvc *appquotes.Service, tradingSvc *apptrading.Service, resolver *appinstruments.Resolver, cache *redis.Client, cfg *config.Config, logger *logrus.Logger) *Handler {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())

	h := &Handler{
		router:        router,
		quotes:        quotesSvc,
		trading:       tradingSvc,
		resolver:      resolver,
		cache:         cache,
		cacheTTL:      time.Duration(cfg.Redis.TTLSeconds) * time.Second,
		logger:        logger,
		defaultTicker: cfg.Quotes.DefaultTicker,
		fallback:      cfg.Fallback,
		hasToken:      cfg.Invest.HasToken(),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/health", h.health)

	api := h.router.Group(apiBasePath)
	{
		api.GET("/price", h.getPrice)
		api.GET("/status", h.getStatus)
		api.POST("/order/limit", h.placeLimitOrder)

		portfolio := api.Group("/portfolio")
		if h.cache != nil {
			portfolio.Use(h.cacheMiddleware())
		}
		portfolio.GET("", h.getPortfolio)
	}

	h.router.NoRoute(h.notFound)
}

// getPrice returns the last known price for a ticker
// @Summary      Get price
// @Description  Get the last price for a ticker, served from the quote cache when fresh
// @Tags         quotes
// @Produce      json
// @Param        ticker  query     string  false  "Ticker symbol"  default(SBER)
// @Success      200     {object}  envelope
// @Failure      502     {object}  envelope
// @Router       /price [get]
func (h *Handler) getPrice(c *gin.Context) {
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		ticker = h.defaultTicker
	}

	entry, err := h.quotes.GetPrice(c.Request.Context(), ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Warn("price lookup failed")
		if !h.fallback.Enabled {
			writeFailure(c, http.StatusBadGateway, err)
			return
		}
		writeSuccess(c, priceData{
			Price:     h.mockPrice(),
			Timestamp: time.Now().UnixMilli(),
			Ticker:    strings.ToUpper(ticker),
			IsMock:    true,
		})
		return
	}

	writeSuccess(c, priceData{
		Price:     entry.Price,
		Timestamp: entry.FetchedAt.UnixMilli(),
		Ticker:    entry.Ticker,
		Figi:      entry.Figi,
	})
}

// getPortfolio returns the portfolio of the resolved account
// @Summary      Get portfolio
// @Description  Get total amount and positions of the single trading account
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  envelope
// @Failure      502  {object}  envelope
// @Router       /portfolio [get]
func (h *Handler) getPortfolio(c *gin.Context) {
	portfolio, err := h.trading.Portfolio(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("portfolio fetch failed")
		if !h.fallback.Enabled {
			writeFailure(c, http.StatusBadGateway, err)
			return
		}
		writeSuccess(c, portfolioData{
			TotalAmount: 0,
			Positions:   []positionData{},
			IsMock:      true,
		})
		return
	}

	positions := make([]positionData, 0, len(portfolio.Positions))
	for _, p := range portfolio.Positions {
		positions = append(positions, positionData{
			InstrumentUID: p.InstrumentUID,
			Figi:          p.Figi,
			Type:          p.Type,
			Quantity:      p.Quantity,
			AveragePrice:  p.AveragePrice,
			CurrentPrice:  p.CurrentPrice,
		})
	}
	writeSuccess(c, portfolioData{
		TotalAmount: portfolio.TotalAmount,
		Currency:    portfolio.Currency,
		Positions:   positions,
	})
}

// placeLimitOrder places a limit order
// @Summary      Place limit order
// @Description  Validate and forward a limit order to the upstream trading API
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body      orderPayload  true  "Order data"
// @Success      200    {object}  envelope
// @Failure      400    {object}  envelope
// @Failure      500    {object}  envelope
// @Router       /order/limit [post]
func (h *Handler) placeLimitOrder(c *gin.Context) {
	var payload orderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeFailure(c, http.StatusBadRequest, err)
		return
	}
	if missing := payload.missingFields(); len(missing) > 0 {
		writeFailure(c, http.StatusBadRequest, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	result, err := h.trading.PlaceLimitOrder(c.Request.Context(), apptrading.OrderRequest{
		Ticker:    *payload.Ticker,
		Quantity:  *payload.Quantity,
		Price:     *payload.Price,
		Direction: domaintrading.Direction(strings.ToLower(*payload.Direction)),
	})
	if err != nil {
		if isValidationError(err) {
			writeFailure(c, http.StatusBadRequest, err)
			return
		}
		h.logger.WithError(err).Error("order placement failed")
		writeFailure(c, http.StatusInternalServerError, err)
		return
	}

	writeSuccess(c, orderData{
		OrderID: result.OrderID,
		Status:  result.Status,
		Message: result.Message,
	})
}

// getStatus reports service availability
// @Summary      Get status
// @Description  Report whether the facade can reach the upstream trading API
// @Tags         status
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /status [get]
func (h *Handler) getStatus(c *gin.Context) {
	data := statusData{
		Status:    "online",
		Timestamp: time.Now().UnixMilli(),
		HasToken:  h.hasToken,
		Message:   "all systems operational",
	}

	switch {
	case !h.hasToken:
		data.Status = "limited"
		data.Message = "upstream token is not configured"
	default:
		if _, err := h.resolver.AccountID(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("status probe failed")
			data.Status = "limited"
			data.Message = "upstream is unreachable"
		}
	}

	writeSuccess(c, data)
}

// health is the liveness probe
// @Summary      Health check
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *Handler) notFound(c *gin.Context) {
	writeFailure(c, http.StatusNotFound, errRouteNotFound)
}

func (h *Handler) mockPrice() float64 {
	return h.fallback.BasePrice + rand.Float64()*h.fallback.PriceJitter
}

// Payload and response shapes

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type priceData struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Ticker    string  `json:"ticker"`
	Figi      string  `json:"figi,omitempty"`
	IsMock    bool    `json:"isMock,omitempty"`
}

type positionData struct {
	InstrumentUID string  `json:"instrumentUid"`
	Figi          string  `json:"figi,omitempty"`
	Type          string  `json:"type,omitempty"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"averagePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
}

type portfolioData struct {
	TotalAmount float64        `json:"totalAmount"`
	Currency    string         `json:"currency,omitempty"`
	Positions   []positionData `json:"positions"`
	IsMock      bool           `json:"isMock,omitempty"`
}

type orderData struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusData struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	HasToken  bool   `json:"hasToken"`
	Message   string `json:"message"`
}

// orderPayload uses pointers so absent fields can be told apart from zero
// values during presence validation.
type orderPayload struct {
	Ticker    *string  `json:"ticker"`
	Quantity  *int64   `json:"quantity"`
	Price     *float64 `json:"price"`
	Direction *string  `json:"direction"`
}

func (p orderPayload) missingFields() []string {
	var missing []string
	if p.Ticker == nil || strings.TrimSpace(*p.Ticker) == "" {
		missing = append(missing, "ticker")
	}
	if p.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	if p.Direction == nil || strings.TrimSpace(*p.Direction) == "" {
		missing = append(missing, "direction")
	}
	return missing
}

func isValidationError(err error) bool {
	return errors.Is(err, apptrading.ErrInvalidQuantity) ||
		errors.Is(err, apptrading.ErrInvalidPrice) ||
		errors.Is(err, apptrading.ErrInvalidDirection)
}

func writeSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func writeFailure(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, envelope{Success: false, Error: err.Error()})
}

// corsMiddleware allows any origin; preflight requests are answered with an
// empty 200.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
