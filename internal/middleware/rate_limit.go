package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute
	attemptWindow    = 15 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email, compteurs
// et cooldowns en Redis.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour le handler suivant
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()

		// En cooldown ?
		cooldownKey := "login_cooldown:" + input.Email
		if rdb.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := rdb.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":     fmt.Sprintf("Too many failed attempts, retry in %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		key := "login_attempts:" + input.Email
		attempts := rdb.Incr(ctx, key).Val()
		if attempts == 1 {
			rdb.Expire(ctx, key, attemptWindow)
		}
		if attempts > LoginMaxAttempts {
			rdb.Set(ctx, cooldownKey, 1, LoginCooldown)
			rdb.Del(ctx, key)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many failed attempts, account temporarily locked",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ResetLoginAttempts remet le compteur à zéro après un login réussi.
func ResetLoginAttempts(rdb *redis.Client, email string) {
	rdb.Del(context.Background(), "login_attempts:"+email)
}
