package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	h := NewUploadHandler(nil, "", "", dir)

	r := gin.New()
	r.POST("/api/upload", h.UploadImage)
	return r, dir
}

func multipartImage(t *testing.T, field, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadImage_AcceptsJPG(t *testing.T) {
	r, dir := newUploadRouter(t)

	body, contentType := multipartImage(t, "image", "photo.jpg", "image/jpeg")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Image uploaded", got["message"])
	assert.True(t, strings.HasSuffix(got["image"], ".jpg"))
	// nom de fichier régénéré, jamais celui du client
	assert.NotContains(t, got["image"], "photo")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".jpg", filepath.Ext(entries[0].Name()))
}

func TestUploadImage_AcceptsPNG(t *testing.T) {
	r, _ := newUploadRouter(t)

	body, contentType := multipartImage(t, "image", "logo.PNG", "image/png")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadImage_RejectsBadExtension(t *testing.T) {
	r, dir := newUploadRouter(t)

	body, contentType := multipartImage(t, "image", "script.gif", "image/gif")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// le refus est un vrai 400 structuré, pas une requête laissée pendante
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "Images only (jpg, jpeg, png)"}`, w.Body.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadImage_RejectsMismatchedMIME(t *testing.T) {
	r, _ := newUploadRouter(t)

	// extension acceptée mais type déclaré interdit
	body, contentType := multipartImage(t, "image", "evil.png", "application/octet-stream")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage_MissingFile(t *testing.T) {
	r, _ := newUploadRouter(t)

	body, contentType := multipartImage(t, "autre_champ", "photo.jpg", "image/jpeg")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message": "No image file provided"}`, w.Body.String())
}
