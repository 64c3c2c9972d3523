package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"proshop_back_end/internal/models"
)

// OrderStore persiste les commandes dans la collection "orders".
type OrderStore struct {
	collection *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{collection: db.Collection("orders")}
}

// Insert crée la commande et pose createdAt/updatedAt. L'_id est généré ici
// pour pouvoir le renvoyer sans relecture.
func (s *OrderStore) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("insertion commande: %w", err)
	}
	return order, nil
}

// FindByUser renvoie les commandes d'un utilisateur, dans l'ordre d'insertion.
func (s *OrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, fmt.Errorf("recherche commandes utilisateur: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("décodage commandes: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("recherche commande: %w", err)
	}
	return &order, nil
}

// SetPaid pose isPaid et paidAt dans un seul $set : les deux champs restent
// cohérents même pour un lecteur concurrent. paidAt nil écrit null.
func (s *OrderStore) SetPaid(ctx context.Context, id primitive.ObjectID, paid bool, paidAt *time.Time) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"isPaid":    paid,
			"paidAt":    paidAt,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("mise à jour paiement: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetDelivered marque la commande livrée et renvoie le document mis à jour.
func (s *OrderStore) SetDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"isDelivered": true,
			"deliveredAt": at,
			"updatedAt":   time.Now().UTC(),
		}},
		opts,
	).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("mise à jour livraison: %w", err)
	}
	return &order, nil
}

func (s *OrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("recherche commandes: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("décodage commandes: %w", err)
	}
	return orders, nil
}
