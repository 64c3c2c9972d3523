package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"proshop_back_end/internal/models"
)

// ProductStore : accès lecture seule au catalogue, uniquement pour
// enrichir les lignes de commande avec le nom produit à jour.
type ProductStore struct {
	collection *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{collection: db.Collection("products")}
}

func (s *ProductStore) FindName(ctx context.Context, id primitive.ObjectID) (string, error) {
	var product models.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", fmt.Errorf("produit %s introuvable", id.Hex())
		}
		return "", fmt.Errorf("recherche produit: %w", err)
	}
	return product.Name, nil
}
