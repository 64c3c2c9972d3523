package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"proshop_back_end/internal/cache"
	"proshop_back_end/internal/config"
	"proshop_back_end/internal/database"
	"proshop_back_end/internal/handlers"
	"proshop_back_end/internal/routes"
	"proshop_back_end/internal/service"
	"proshop_back_end/internal/store"
	"proshop_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
		log.Println("✅ Stripe initialisé")
	} else {
		log.Println("⚠️  Stripe non configuré — paiements en ligne désactivés")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Échec connexion bases de données: ", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db.Close(closeCtx)
	}()

	// Stores
	orderStore := store.NewOrderStore(db.DB)
	userStore := store.NewUserStore(db.DB)
	productStore := store.NewProductStore(db.DB)

	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Println("⚠️  Index utilisateurs non créés:", err)
	}

	// Service commandes + cache produits
	productCache := cache.NewProductNameCache(db.Redis, productStore)
	orderService := service.NewOrderService(orderStore, userStore, productCache)

	// Mailer optionnel
	var mailer handlers.ConfirmationMailer
	if m := utils.NewMailer(cfg); m != nil {
		mailer = m
	}

	h := routes.Handlers{
		Orders:  handlers.NewOrderHandler(orderService, mailer),
		Upload:  handlers.NewUploadHandler(db.MinIO, cfg.MinioBucket, cfg.MinioEndpoint, cfg.UploadDir),
		Auth:    handlers.NewAuthHandler(userStore, db.Redis, []byte(cfg.JWTSecret)),
		Payment: handlers.NewPaymentHandler(orderService, cfg.StripeWebhookSecret),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	routes.Register(r, h, cfg, db.Redis)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("🚀 Serveur ProShop lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Erreur serveur: ", err)
		}
	}()

	// Arrêt gracieux sur SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️  Arrêt forcé:", err)
	}
	log.Println("👋 Serveur arrêté")
}
