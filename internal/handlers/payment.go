package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"proshop_back_end/internal/service"
)

// PaymentHandler relie Stripe au cycle de vie des commandes : le webhook
// payment_intent.succeeded déclenche la même transition que PUT /:id/pay.
type PaymentHandler struct {
	service       OrderAPI
	webhookSecret string
}

func NewPaymentHandler(svc OrderAPI, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{service: svc, webhookSecret: webhookSecret}
}

// POST /api/orders/:id/payment-intent — crée un PaymentIntent Stripe
// du montant total de la commande.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.OrderByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch order"})
		return
	}

	if order.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order already paid"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(order.TotalPrice * 100)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id": order.ID.Hex(),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create payment intent"})
		return
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f€) pour la commande %s",
		intent.ID, order.TotalPrice, order.ID.Hex())

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
	})
}

// POST /api/payment/webhook — endpoint webhook Stripe.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}

	var event stripe.Event
	if h.webhookSecret == "" {
		log.Println("⚠️  Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid signature"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	h.handleStripeEvent(c.Request.Context(), event)

	c.Status(http.StatusOK)
}

func (h *PaymentHandler) handleStripeEvent(ctx context.Context, event stripe.Event) {
	if event.Type != "payment_intent.succeeded" {
		log.Printf("ℹ️  Événement ignoré : %s", event.Type)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}

	orderID := pi.Metadata["order_id"]
	if orderID == "" {
		log.Println("⚠️  PaymentIntent sans order_id, ignoré")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if err := h.service.MarkPaid(ctx, orderID, true, &now); err != nil {
		log.Printf("❌ Commande %s non marquée payée: %v", orderID, err)
		return
	}

	log.Printf("✅ Commande %s marquée payée via Stripe (%s)", orderID, pi.ID)
}
