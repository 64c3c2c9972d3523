package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop_back_end/internal/models"
	"proshop_back_end/internal/service"
)

// OrderAPI est la surface du service consommée par les handlers.
type OrderAPI interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput, ownerID primitive.ObjectID) (*models.Order, error)
	OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	OrderByID(ctx context.Context, id string) (*models.PopulatedOrder, error)
	MarkPaid(ctx context.Context, id string, paid bool, paidAt *time.Time) error
	MarkDelivered(ctx context.Context, id string) (*models.Order, error)
	AllOrders(ctx context.Context) ([]models.PopulatedOrder, error)
}

// ConfirmationMailer envoie l'e-mail de confirmation après création.
type ConfirmationMailer interface {
	SendOrderConfirmation(order *models.Order, to string) error
}

type OrderHandler struct {
	service OrderAPI
	mailer  ConfirmationMailer // nil = pas d'e-mails
}

func NewOrderHandler(svc OrderAPI, mailer ConfirmationMailer) *OrderHandler {
	return &OrderHandler{service: svc, mailer: mailer}
}

// POST /api/order — 201 + commande créée, 400 "No order items"
func (h *OrderHandler) AddOrderItems(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, input, ownerID)
	if err != nil {
		if errors.Is(err, service.ErrNoOrderItems) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No order items"})
			return
		}
		log.Println("❌ Erreur création commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		return
	}

	// Confirmation asynchrone : un échec d'e-mail ne casse pas la commande
	if h.mailer != nil {
		if email := c.GetString("email"); email != "" {
			go func(o models.Order) {
				if err := h.mailer.SendOrderConfirmation(&o, email); err != nil {
					log.Println("⚠️  E-mail de confirmation non envoyé:", err)
				}
			}(*order)
		}
	}

	log.Printf("✅ Commande %s créée pour user %s", order.ID.Hex(), ownerID.Hex())
	c.JSON(http.StatusCreated, order)
}

// GET /api/orders/myorders — 200 + liste (possiblement vide)
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.service.OrdersForUser(ctx, userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id — 200 + commande (user résolu), 404 "Order not found"
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.service.OrderByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Println("❌ Erreur recherche commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// PUT /api/orders/:id/pay — 200 {message} ou 500 {message, error}.
// Tout échec, y compris commande introuvable, part en 500 : contrat
// historique conservé tel quel (voir DESIGN.md).
func (h *OrderHandler) UpdateOrderToPaid(c *gin.Context) {
	var input struct {
		Paid   bool       `json:"paid"`
		PaidAt *time.Time `json:"paidAt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update order",
			"error":   err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.MarkPaid(ctx, c.Param("id"), input.Paid, input.PaidAt); err != nil {
		log.Println("❌ Erreur mise à jour paiement:", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to update order",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully"})
}

// PUT /api/orders/:id/deliver — 200 + commande mise à jour, 404
func (h *OrderHandler) UpdateOrderToDelivered(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.MarkDelivered(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		log.Println("❌ Erreur mise à jour livraison:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /api/orders — 200 + toutes les commandes (user résolu en {id, name})
func (h *OrderHandler) GetOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.service.AllOrders(ctx)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
