package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product : lecture seule côté commandes, on ne touche jamais au catalogue ici.
type Product struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image" json:"image"`
	Price float64            `bson:"price" json:"price"`
}
