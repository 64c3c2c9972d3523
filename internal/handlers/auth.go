package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"proshop_back_end/internal/middleware"
	"proshop_back_end/internal/models"
	"proshop_back_end/internal/store"
	"proshop_back_end/internal/utils"
)

type AuthHandler struct {
	users     *store.UserStore
	redis     *redis.Client
	jwtSecret []byte
}

func NewAuthHandler(users *store.UserStore, rdb *redis.Client, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{users: users, redis: rdb, jwtSecret: jwtSecret}
}

// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user data"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Println("❌ Erreur hash mot de passe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	user, err := h.users.Insert(ctx, &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		log.Println("❌ Erreur création utilisateur:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	token, err := utils.GenerateJWT(user, h.jwtSecret)
	if err != nil {
		log.Println("❌ Erreur génération JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	log.Println("✅ Utilisateur créé :", user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"_id":     user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
		"token":   token,
	})
}

// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, input.Email)
	if err != nil {
		// Même réponse qu'un mauvais mot de passe : pas d'énumération d'emails
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateJWT(user, h.jwtSecret)
	if err != nil {
		log.Println("❌ Erreur génération JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}

	if h.redis != nil {
		middleware.ResetLoginAttempts(h.redis, input.Email)
	}

	log.Println("✅ Connexion :", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"_id":     user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
		"token":   token,
	})
}
