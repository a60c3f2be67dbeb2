package app

import (
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/gateway"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(router *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestLocalFallbackStorageIsServed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pdfs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pdfs", "ozet.pdf"), []byte("%PDF-1.4"), 0644))

	// minio 地址非法，初始化失败后回退到本地磁盘
	storage, err := gateway.NewStorageProvider(&config.StorageConfig{
		Type:          "minio",
		MinioEndpoint: "minio.local/edu",
		LocalPath:     root,
	})
	require.Error(t, err)

	app := &App{Storage: storage}
	router := gin.New()
	app.mountLocalStorage(router)

	assert.Equal(t, http.StatusOK, get(router, "/uploads/pdfs/ozet.pdf"))
}

func TestPublicBaseURLPathIsServed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "a.png"), []byte("png"), 0644))

	app := &App{Storage: &gateway.LocalStorageProvider{Root: root, BaseURL: "https://cdn.example.com/files/"}}
	router := gin.New()
	app.mountLocalStorage(router)

	assert.Equal(t, http.StatusOK, get(router, "/files/images/a.png"))
}

func TestNoStorageMountsNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := &App{}
	router := gin.New()
	app.mountLocalStorage(router)

	assert.Equal(t, http.StatusNotFound, get(router, "/uploads/pdfs/ozet.pdf"))
}
