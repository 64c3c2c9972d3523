package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"proshop_back_end/internal/config"
	"proshop_back_end/internal/handlers"
	"proshop_back_end/internal/middleware"
)

// Handlers regroupe tout ce que Register doit câbler.
type Handlers struct {
	Orders  *handlers.OrderHandler
	Upload  *handlers.UploadHandler
	Auth    *handlers.AuthHandler
	Payment *handlers.PaymentHandler
}

// Register câble toutes les routes de l'API.
func Register(r *gin.Engine, h Handlers, cfg *config.Config, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	auth := middleware.AuthRequired([]byte(cfg.JWTSecret))

	// Auth
	users := r.Group("/api/users")
	{
		users.POST("/register", h.Auth.Register)
		users.POST("/login", middleware.LoginRateLimit(rdb), h.Auth.Login)
	}

	// Commandes — la route de création est au singulier, héritage assumé
	r.POST("/api/order", auth, h.Orders.AddOrderItems)

	orders := r.Group("/api/orders", auth)
	{
		orders.GET("", middleware.RequireAdmin, h.Orders.GetOrders)
		orders.GET("/myorders", h.Orders.GetMyOrders)
		orders.GET("/:id", h.Orders.GetOrderByID)
		orders.PUT("/:id/pay", h.Orders.UpdateOrderToPaid)
		orders.PUT("/:id/deliver", middleware.RequireAdmin, h.Orders.UpdateOrderToDelivered)
		orders.POST("/:id/payment-intent", h.Payment.CreatePaymentIntent)
	}

	// Paiement (webhook public, signé par Stripe)
	r.POST("/api/payment/webhook", h.Payment.StripeWebhook)

	// Upload + fichiers statiques
	r.POST("/api/upload", auth, h.Upload.UploadImage)
	r.Static("/uploads", cfg.UploadDir)
}
