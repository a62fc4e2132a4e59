package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type CartStore interface {
	AddItem(ctx context.Context, customerID, productID int64, quantity int, kind domain.Kind) (*domain.CartLine, error)
	SetQuantity(ctx context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, customerID, productID int64, kind domain.Kind) error
	RemoveItemByID(ctx context.Context, customerID, lineID int64, kind domain.Kind) error
	ListItems(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartItem, error)
	Clear(ctx context.Context, customerID int64, kind domain.Kind) (int64, error)
	MergeGuestCart(ctx context.Context, customerID int64, source cartsvc.GuestSource, kind domain.Kind) (cartsvc.MergeResult, error)
}

type GuestCart interface {
	Add(ctx context.Context, guestID string, productID int64, quantity int) (int, error)
	ApplyDelta(ctx context.Context, guestID string, productID int64, delta int) (int, error)
	Remove(ctx context.Context, guestID string, productID int64) error
	Items(ctx context.Context, guestID string) ([]cartsvc.GuestItem, error)
	Source(guestID string, kind domain.Kind) (cartsvc.GuestSource, error)
}

type GuestSessions interface {
	Issue(ctx context.Context) (anonymous.Session, error)
	Refresh(ctx context.Context, refreshToken string) (anonymous.Session, error)
	LookupByToken(ctx context.Context, token string) (string, error)
	AccessTTLSeconds() int
}

type OrderService interface {
	PlaceOrder(ctx context.Context, customerID, billingAddressID, shippingAddressID int64) (*domain.Order, error)
	CreateAddress(ctx context.Context, in ordersvc.AddressInput) (*domain.Address, error)
	ListAddresses(ctx context.Context, customerID int64) ([]domain.Address, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, identifier string) (*domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	AccessTTLSeconds() int
}

type CatalogService interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	View(ctx context.Context, id int64, viewer string) (*domain.Product, error)
	Homepage(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, name string) ([]domain.Product, error)
	ByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	Filter(ctx context.Context, in catalog.FilterInput) ([]domain.Product, error)
	Attributes(ctx context.Context, id int64) (map[string]interface{}, error)
	Tree(ctx context.Context) ([]domain.Category, error)
	WithImages(ctx context.Context) ([]domain.Category, error)
	SubmitReview(ctx context.Context, in catalog.ReviewInput) (*domain.ProductReview, error)
	ListReviews(ctx context.Context) ([]domain.ProductReview, error)
	ReviewsByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error)
	Rating(ctx context.Context, productID int64) (domain.ProductRating, error)
	RecentlyViewed(ctx context.Context, viewer string, count int) ([]domain.Product, error)
}

type EventStream interface {
	Subscribe(customerID int64) (<-chan events.Event, func())
}

// Deps are the services the router exposes. Every field is required.
type Deps struct {
	CartSvc     CartStore
	GuestCart   GuestCart
	GuestSvc    GuestSessions
	OrderSvc    OrderService
	CustomerSvc CustomerService
	CatalogSvc  CatalogService
	Events      EventStream
}

func (d Deps) validate() error {
	switch {
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.GuestCart == nil:
		return errors.New("guest cart is required")
	case d.GuestSvc == nil:
		return errors.New("guest session service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	case d.CustomerSvc == nil:
		return errors.New("customer service is required")
	case d.CatalogSvc == nil:
		return errors.New("catalog service is required")
	case d.Events == nil:
		return errors.New("event stream is required")
	}
	return nil
}

// Options tune the router. Zero values are usable.
type Options struct {
	CORSOrigins []string
	Metrics     *metrics.HTTPMetrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	// Heartbeat is the keep-alive interval of event streams.
	Heartbeat time.Duration
}

type handler struct {
	deps      Deps
	logger    *zerolog.Logger
	heartbeat time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(log *zerolog.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID(log), requestLogger(log), observe(opts.Metrics), recovery(log))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &handler{deps: deps, logger: log, heartbeat: opts.Heartbeat}
	if h.heartbeat <= 0 {
		h.heartbeat = 15 * time.Second
	}

	api := router.Group("/api")

	api.POST("/cart/items", h.addCartItem)
	api.PATCH("/cart/items", h.applyCartDelta)
	api.GET("/cart/items/:customerId", h.listCart)
	api.DELETE("/:customerId/cart/items/:productId", h.removeCartItem)
	api.DELETE("/cart/:customerId", h.clearCart)
	api.POST("/cart/merge", h.mergeInto(domain.KindCart))

	api.POST("/wishlist/add", h.addWishlistItem)
	api.GET("/wishlist/:customerId", h.listWishlist)
	api.DELETE("/wishlist/remove-by-id/:itemId", h.removeWishlistItem)
	api.DELETE("/wishlist/clear", h.clearWishlist)
	api.POST("/wishlist/merge", h.mergeInto(domain.KindWishlist))

	api.POST("/order/create", h.placeOrder)
	api.POST("/order/create-address", h.createAddress)
	api.GET("/order/addresses/:customerId", h.listAddresses)
	api.GET("/order/:orderId", h.getOrder)
	api.GET("/order/customer/:customerId", h.listOrders)

	guest := api.Group("/guest")
	guest.POST("/session", h.startGuestSession)
	guest.POST("/session/refresh", h.refreshGuestSession)
	guestCart := guest.Group("/cart", guestMiddleware(deps.GuestSvc))
	guestCart.GET("/items", h.listGuestCart)
	guestCart.POST("/items", h.addGuestItem)
	guestCart.PATCH("/items", h.applyGuestDelta)
	guestCart.DELETE("/items/:productId", h.removeGuestItem)

	api.POST("/customers/signup", h.signup)
	api.POST("/customers/login", h.login)
	api.GET("/customers", h.listCustomers)
	api.GET("/customers/:customerId", h.getCustomer)
	me := api.Group("/me", currentCustomer(deps.CustomerSvc))
	me.GET("", h.me)
	me.POST("/logout", h.logout)

	api.GET("/products", h.homepage)
	api.GET("/products/search", h.searchProducts)
	api.GET("/products/filter", h.filterProducts)
	api.GET("/products/category/:categoryId", h.productsByCategory)
	api.GET("/products/:productId", h.getProduct)
	api.GET("/products/:productId/attributes", h.productAttributes)
	api.GET("/categories", h.categoryTree)
	api.GET("/categories/with-images", h.categoriesWithImages)

	api.POST("/review", h.submitReview)
	api.GET("/review", h.listReviews)
	api.GET("/review/product/:productId", h.reviewsByProduct)
	api.GET("/review/product/:productId/rating", h.productRating)

	api.GET("/recently-viewed", h.recentlyViewed)
	api.GET("/events/:customerId", h.streamEvents)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Message: "route not found", Code: "not_found"})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Customer-Id", guestTokenHeader, requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
