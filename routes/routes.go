package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/config"
	cartControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/cart"
	checkoutControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/checkout"
	notificationControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/notification"
	orderControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/order"
	paymentControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/payment"
	restaurantControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/restaurant"
	userControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/user"
	webhookControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/webhook"
	zoneControllers "github.com/wglickman33/mykosherdelivery-sub001/controllers/zone"
	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/payments"
	"github.com/wglickman33/mykosherdelivery-sub001/zones"
)

// Deps bundles the process-wide collaborators the route handlers need.
type Deps struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Bus          *events.Bus
	Zones        *zones.Service
	Orchestrator *payments.Orchestrator
}

// Setup wires every route group. Checkout and the payment surface allow
// guests; cart and order history need a session; admin surfaces are
// role-gated on top.
func Setup(r *gin.Engine, d Deps) {
	authn := middleware.RequireAuth(d.Cfg.JWTSecret)
	staffOnly := middleware.RequireRoles(models.RoleStaff, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// Browsing is public.
	r.GET("/restaurants", restaurantControllers.ListRestaurantsHandler(d.DB))
	r.GET("/restaurants/:id/menu", restaurantControllers.GetMenuHandler(d.DB))

	// Checkout: guests allowed, session attached when present.
	r.POST("/checkout/preview", optional(authn), checkoutControllers.PreviewHandler(d.DB, d.Zones))
	r.POST("/checkout", optional(authn), checkoutControllers.SubmitHandler(d.DB, d.Bus, d.Zones))

	// Payments: intent creation from the checkout client, confirmation
	// callback from the processor.
	r.POST("/payments/intent", optional(authn), paymentControllers.CreateIntentHandler(d.Orchestrator))
	r.POST("/payments/confirm", paymentControllers.ConfirmHandler(d.Orchestrator))

	// Delivery-dispatch webhook, shared-secret authenticated.
	r.POST("/webhooks/dispatch",
		middleware.RequireDispatchSecret(d.Cfg.DispatchSecret),
		webhookControllers.DispatchHandler(d.DB, d.Bus))

	// Cart (session required).
	cart := r.Group("/cart", authn)
	{
		cart.GET("", cartControllers.GetHandler(d.DB))
		cart.POST("", cartControllers.UpsertItemHandler(d.DB))
		cart.DELETE("", cartControllers.ClearHandler(d.DB))
		cart.DELETE("/:menu_item_id", cartControllers.DeleteItemHandler(d.DB))
	}

	r.GET("/me", authn, userControllers.GetMeHandler(d.DB))

	// Orders.
	orders := r.Group("/orders", authn)
	{
		orders.GET("", staffOnly, orderControllers.GetAllOrdersHandler(d.DB))
		orders.GET("/mine", orderControllers.GetMyOrdersHandler(d.DB))
		orders.GET("/:orderID", orderControllers.GetOrderHandler(d.DB))
		orders.PATCH("/:orderID/status", orderControllers.UpdateStatusHandler(d.DB, d.Bus))
	}

	// Admin: notifications and the live event stream. The stream endpoints
	// authenticate via the single-purpose token instead of the session.
	admin := r.Group("/admin")
	{
		admin.POST("/stream-token", authn, adminOnly,
			orderControllers.StreamTokenHandler(d.Cfg.StreamTokenSecret))
		admin.GET("/events", orderControllers.EventsHandler(d.Bus, d.Cfg.StreamTokenSecret))
		admin.GET("/orders/ws", orderControllers.OrdersWebSocketHandler(d.Bus, d.Cfg.StreamTokenSecret))

		notifications := admin.Group("/notifications", authn, adminOnly)
		notifications.GET("", notificationControllers.ListHandler(d.DB))
		notifications.POST("/:id/read", notificationControllers.MarkReadHandler(d.DB))

		manage := admin.Group("", authn, adminOnly)
		manage.GET("/users", userControllers.ListUsersHandler(d.DB))
		manage.PATCH("/users/role", userControllers.UpdateRoleHandler(d.DB))
		manage.POST("/restaurants", restaurantControllers.CreateRestaurantHandler(d.DB))
		manage.POST("/restaurants/:id/menu", restaurantControllers.CreateMenuItemHandler(d.DB))
		manage.PATCH("/menu-items/:itemID", restaurantControllers.UpdateMenuItemHandler(d.DB))
		manage.DELETE("/menu-items/:itemID", restaurantControllers.DeleteMenuItemHandler(d.DB))
		manage.GET("/zones", zoneControllers.ListZonesHandler(d.DB))
		manage.PUT("/zones", zoneControllers.UpsertZoneHandler(d.DB))
		manage.GET("/promo-codes", zoneControllers.ListPromosHandler(d.DB))
		manage.PUT("/promo-codes", zoneControllers.UpsertPromoHandler(d.DB))
	}
}

// optional runs the auth middleware only when the client sent credentials,
// so guest checkout and authenticated checkout share one route.
func optional(authn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authn(c)
	}
}
