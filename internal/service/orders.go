package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop_back_end/internal/models"
	"proshop_back_end/internal/store"
)

// ErrNoOrderItems : création refusée sans ligne de commande.
var ErrNoOrderItems = errors.New("no order items")

// ErrOrderNotFound est réexporté pour que les handlers ne dépendent que
// du service.
var ErrOrderNotFound = store.ErrOrderNotFound

// OrderStore est le contrat de persistance des commandes.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	SetPaid(ctx context.Context, id primitive.ObjectID, paid bool, paidAt *time.Time) error
	SetDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
}

// UserStore résout les références user (populate).
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ProductNames enrichit les lignes avec le nom produit courant.
// Peut être nil : l'enrichissement est alors simplement sauté.
type ProductNames interface {
	Names(ctx context.Context, productIDs []primitive.ObjectID) map[string]string
}

// OrderService porte tout le cycle de vie des commandes : validation,
// transitions payé/livré, résolution des références.
type OrderService struct {
	orders   OrderStore
	users    UserStore
	products ProductNames
}

func NewOrderService(orders OrderStore, users UserStore, products ProductNames) *OrderService {
	return &OrderService{orders: orders, users: users, products: products}
}

// CreateOrderItemInput est la ligne telle qu'envoyée par le client : son
// champ _id est l'identifiant du produit, pas celui de la ligne.
type CreateOrderItemInput struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

type CreateOrderInput struct {
	OrderItems      []CreateOrderItemInput `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

// CreateOrder valide la requête et crée une commande non payée, non livrée.
// Chaque ligne reçue est remappée explicitement : l'_id client devient la
// référence product d'une nouvelle ligne, jamais une mutation sur place.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput, ownerID primitive.ObjectID) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, ErrNoOrderItems
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		productID, err := primitive.ObjectIDFromHex(it.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrNoOrderItems, it.ID)
		}
		items = append(items, models.OrderItem{
			Name:    it.Name,
			Qty:     it.Qty,
			Image:   it.Image,
			Price:   it.Price,
			Product: productID,
		})
	}

	order := &models.Order{
		User:            ownerID,
		OrderItems:      items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
		IsPaid:          false,
		PaidAt:          nil,
		IsDelivered:     false,
		DeliveredAt:     nil,
	}

	return s.orders.Insert(ctx, order)
}

// OrdersForUser liste les commandes d'un utilisateur, lignes enrichies avec
// le nom produit courant quand le cache le connaît.
func (s *OrderService) OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.products != nil {
		ids := []primitive.ObjectID{}
		for _, o := range orders {
			for _, it := range o.OrderItems {
				ids = append(ids, it.Product)
			}
		}
		names := s.products.Names(ctx, ids)
		for i := range orders {
			for j := range orders[i].OrderItems {
				if name, ok := names[orders[i].OrderItems[j].Product.Hex()]; ok {
					orders[i].OrderItems[j].Name = name
				}
			}
		}
	}

	return orders, nil
}

// OrderByID renvoie la commande avec sa référence user résolue en
// {name, email} pour l'affichage.
func (s *OrderService) OrderByID(ctx context.Context, id string) (*models.PopulatedOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	populated := &models.PopulatedOrder{Order: *order}
	if user, err := s.users.FindByID(ctx, order.User); err == nil {
		populated.User = models.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	return populated, nil
}

// MarkPaid pose isPaid. paid=true fige paidAt (horodatage fourni, sinon
// maintenant) ; paid=false remet paidAt à null. Le retour en arrière est
// volontairement conservé tel quel — incohérent avec une vraie sémantique
// de paiement, mais c'est le contrat existant.
func (s *OrderService) MarkPaid(ctx context.Context, id string, paid bool, paidAt *time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	var at *time.Time
	if paid {
		if paidAt != nil {
			at = paidAt
		} else {
			now := time.Now().UTC()
			at = &now
		}
	}

	return s.orders.SetPaid(ctx, oid, paid, at)
}

// MarkDelivered est à sens unique : toujours vers livré. Un nouvel appel
// sur une commande déjà livrée rafraîchit deliveredAt.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return s.orders.SetDelivered(ctx, oid, time.Now().UTC())
}

// AllOrders liste toutes les commandes, référence user résolue en {id, name}.
// Le contrôle admin est fait à la frontière HTTP, pas ici.
func (s *OrderService) AllOrders(ctx context.Context) ([]models.PopulatedOrder, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	populated := make([]models.PopulatedOrder, 0, len(orders))
	for _, o := range orders {
		p := models.PopulatedOrder{Order: o}
		if user, err := s.users.FindByID(ctx, o.User); err == nil {
			p.User = models.UserRef{ID: user.ID, Name: user.Name}
		}
		populated = append(populated, p)
	}
	return populated, nil
}
