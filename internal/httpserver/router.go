package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"duka-pos/internal/cart"
	"duka-pos/internal/checkout"
	"duka-pos/internal/domain"
	"duka-pos/internal/metrics"
	"duka-pos/internal/repository/session"
)

// StoreRepository resolves the store named in the URL.
type StoreRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.Store, error)
}

// ProductService is the catalog surface the handlers read from.
type ProductService interface {
	List(ctx context.Context, storeID string) ([]domain.Product, error)
	Get(ctx context.Context, storeID, id string) (*domain.Product, error)
	Resolve(ctx context.Context, storeID, code string) (cart.Item, error)
}

// POSService drives sessions, carts and checkout.
type POSService interface {
	Rules() checkout.Rules
	Open(ctx context.Context, storeID string) (*session.Session, error)
	Get(ctx context.Context, storeID, id string) (*session.Session, error)
	Close(ctx context.Context, storeID, id string) error
	Scan(ctx context.Context, storeID, id, code string, qty int) (*session.Session, cart.Clamp, error)
	SetQuantity(ctx context.Context, storeID, id, lineID string, qty int) (*session.Session, cart.Clamp, error)
	RemoveLine(ctx context.Context, storeID, id, lineID string) (*session.Session, error)
	Clear(ctx context.Context, storeID, id string) (*session.Session, error)
	BeginCheckout(ctx context.Context, storeID, id string) (*session.Session, error)
	SelectPayment(ctx context.Context, storeID, id string, d checkout.Draft) (*session.Session, error)
	CancelCheckout(ctx context.Context, storeID, id string) (*session.Session, error)
	SubmitCheckout(ctx context.Context, storeID, id string) (*session.Session, checkout.Receipt, error)
}

// DebtorRepository lists credit sales still owed.
type DebtorRepository interface {
	ListOutstanding(ctx context.Context, storeID string) ([]domain.Debtor, error)
}

// Deps holds the collaborators the router dispatches to.
type Deps struct {
	StoreRepo   StoreRepository
	ProductSvc  ProductService
	POSSvc      POSService
	DebtorRepo  DebtorRepository
	Metrics     *metrics.Metrics
	CORSOrigins []string
	ReadyChecks []ReadyCheck
}

type api struct {
	logger  *zap.Logger
	catalog ProductService
	pos     POSService
	debtors DebtorRepository
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	switch {
	case deps.StoreRepo == nil:
		return nil, errors.New("httpserver: store repository required")
	case deps.ProductSvc == nil:
		return nil, errors.New("httpserver: product service required")
	case deps.POSSvc == nil:
		return nil, errors.New("httpserver: pos service required")
	case deps.DebtorRepo == nil:
		return nil, errors.New("httpserver: debtor repository required")
	}
	if err := registerValidators(); err != nil {
		return nil, err
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		deps.Metrics.Middleware(),
		cors.New(corsConfig(deps.CORSOrigins)),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(logger, deps.ReadyChecks))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &api{
		logger:  logger,
		catalog: deps.ProductSvc,
		pos:     deps.POSSvc,
		debtors: deps.DebtorRepo,
	}

	store := router.Group("/stores/:storeKey", storeMiddleware(deps.StoreRepo))
	store.GET("", h.getStore)
	store.GET("/products", h.listProducts)
	store.GET("/products/:productID", h.getProduct)
	store.GET("/lookup", h.lookup)
	store.GET("/debtors", h.listDebtors)

	store.POST("/sessions", h.openSession)
	sess := store.Group("/sessions/:sessionID")
	sess.GET("", h.getSession)
	sess.DELETE("", h.closeSession)
	sess.POST("/scan", h.scan)
	sess.PUT("/lines/:lineID", h.setQuantity)
	sess.DELETE("/lines/:lineID", h.removeLine)
	sess.POST("/clear", h.clearCart)
	sess.POST("/checkout", h.beginCheckout)
	sess.PUT("/checkout/payment", h.selectPayment)
	sess.POST("/checkout/submit", h.submitCheckout)
	sess.POST("/checkout/cancel", h.cancelCheckout)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
