package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop_back_end/internal/store"
)

const ProductCacheTTL = 10 * time.Minute

// ProductNameCache : cache-aside Redis devant le catalogue, pour enrichir
// les lignes de commande sans taper MongoDB à chaque lecture.
type ProductNameCache struct {
	redis    *redis.Client
	products *store.ProductStore
}

func NewProductNameCache(rdb *redis.Client, products *store.ProductStore) *ProductNameCache {
	return &ProductNameCache{redis: rdb, products: products}
}

// Names récupère plusieurs noms de produits. Les absents du cache sont lus
// en base puis remis en cache ; une erreur sur un produit ne bloque pas
// les autres, on renvoie ce qu'on a trouvé.
func (c *ProductNameCache) Names(ctx context.Context, productIDs []primitive.ObjectID) map[string]string {
	result := make(map[string]string)
	missing := []primitive.ObjectID{}

	// 1. Essayer Redis
	for _, id := range productIDs {
		key := "product_name:" + id.Hex()
		name, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			result[id.Hex()] = name
		} else {
			missing = append(missing, id)
		}
	}

	// 2. Lire les manquants en base et les mettre en cache
	for _, id := range missing {
		name, err := c.products.FindName(ctx, id)
		if err != nil {
			continue
		}
		result[id.Hex()] = name
		if err := c.redis.Set(ctx, "product_name:"+id.Hex(), name, ProductCacheTTL).Err(); err != nil {
			log.Println("⚠️  Cache produit non écrit:", err)
		}
	}

	return result
}

// Invalidate retire un produit du cache (à appeler si le catalogue change).
func (c *ProductNameCache) Invalidate(ctx context.Context, productID primitive.ObjectID) {
	c.redis.Del(ctx, "product_name:"+productID.Hex())
}
