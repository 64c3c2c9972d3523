package handlers

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Extensions et types MIME acceptés pour les images produit.
var (
	allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	allowedMIMETypes  = map[string]bool{"image/jpeg": true, "image/png": true}
)

// UploadHandler stocke les images : MinIO si configuré, disque sinon.
type UploadHandler struct {
	minio     *minio.Client // nil = stockage disque
	bucket    string
	endpoint  string
	uploadDir string
}

func NewUploadHandler(minioClient *minio.Client, bucket, endpoint, uploadDir string) *UploadHandler {
	return &UploadHandler{
		minio:     minioClient,
		bucket:    bucket,
		endpoint:  endpoint,
		uploadDir: uploadDir,
	}
}

// POST /api/upload — champ "image", extensions jpg/jpeg/png uniquement.
// Le refus renvoie un 400 structuré (l'ancien backend laissait la requête
// sans réponse correcte).
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if !allowedExtensions[ext] || !allowedMIMETypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Images only (jpg, jpeg, png)"})
		return
	}

	// Nom de fichier unique : on ne garde jamais le nom d'origine
	storedName := fmt.Sprintf("image-%s%s", uuid.NewString(), ext)

	if h.minio != nil {
		h.uploadToMinio(c, file, storedName, contentType)
		return
	}

	dest := filepath.Join(h.uploadDir, storedName)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		log.Println("❌ Erreur écriture fichier:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store image"})
		return
	}

	log.Println("✅ Image enregistrée :", dest)
	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded",
		"image":   "/" + strings.TrimPrefix(filepath.ToSlash(dest), "/"),
	})
}

func (h *UploadHandler) uploadToMinio(c *gin.Context, file *multipart.FileHeader, storedName, contentType string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store image"})
		return
	}
	defer f.Close()

	objectName := "products/" + storedName
	_, err = h.minio.PutObject(ctx, h.bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store image"})
		return
	}

	imageURL := fmt.Sprintf("http://%s/%s/%s", h.endpoint, h.bucket, objectName)
	log.Println("✅ Image uploadée sur MinIO :", objectName)
	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded",
		"image":   imageURL,
	})
}
