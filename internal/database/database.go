package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"proshop_back_end/internal/config"
)

// Databases regroupe les connexions externes, construites explicitement
// au démarrage et injectées partout — plus de variables globales.
type Databases struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *redis.Client
	MinIO *minio.Client // nil si MINIO_ENDPOINT n'est pas configuré
}

// Connect ouvre toutes les connexions. Échec = erreur, pas de log.Fatal ici :
// c'est main qui décide quoi faire.
func Connect(ctx context.Context, cfg *config.Config) (*Databases, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	d := &Databases{}

	// 1. MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connexion MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	d.Mongo = client
	d.DB = client.Database(cfg.MongoDB)
	log.Println("✅ Connecté à MongoDB :", cfg.MongoDB)

	// 2. Redis
	d.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := d.Redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")

	// 3. MinIO (optionnel)
	if cfg.MinioEndpoint != "" {
		if err := d.connectMinIO(ctx, cfg); err != nil {
			return nil, err
		}
	} else {
		log.Println("⚠️  MinIO non configuré — les uploads iront sur disque")
	}

	log.Println("✅ Toutes les bases de données sont connectées")
	return d, nil
}

func (d *Databases) connectMinIO(ctx context.Context, cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", cfg.MinioBucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.MinioBucket)
	}

	d.MinIO = client
	log.Println("✅ Connecté à MinIO :", cfg.MinioEndpoint)
	return nil
}

// Close ferme proprement toutes les connexions (arrêt gracieux).
func (d *Databases) Close(ctx context.Context) {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Println("⚠️  Fermeture Redis:", err)
		}
	}
	if d.Mongo != nil {
		if err := d.Mongo.Disconnect(ctx); err != nil {
			log.Println("⚠️  Fermeture MongoDB:", err)
		}
	}
	log.Println("🔌 Connexions fermées")
}
