package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"imagehost/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, modify ...func(*ServerConfig)) (*ServerImpl, *gin.Engine) {
	root := t.TempDir()
	config := ServerConfig{
		HostServer: "http://host",
		Upload: UploadConfig{
			Folder:      "uploads",
			ServeStatic: true,
		},
		Storage: StorageConfig{
			Driver: StorageDriverDisk,
			Root:   root,
		},
		DB: DBConfig{
			Driver:      DBDriverSQLite,
			Database:    filepath.Join(root, "images.db"),
			AutoMigrate: true,
		},
	}
	for _, fn := range modify {
		fn(&config)
	}
	server, err := NewServer(config)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, server.Close())
	})

	router := gin.New()
	server.RegisterHandlers(router)
	return server, router
}

func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func upload(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newUploadRequest(t, "file", filename, content))
	return w
}

func TestNewServer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ServerConfig)
	}{
		{
			name:   "unsupported storage driver",
			modify: func(c *ServerConfig) { c.Storage.Driver = "ftp" },
		},
		{
			name:   "unsupported database driver",
			modify: func(c *ServerConfig) { c.DB.Driver = "oracle" },
		},
		{
			name:   "missing host server",
			modify: func(c *ServerConfig) { c.HostServer = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			config := ServerConfig{
				HostServer: "http://host",
				Upload:     UploadConfig{Folder: "uploads"},
				Storage:    StorageConfig{Driver: StorageDriverDisk, Root: root},
				DB:         DBConfig{Driver: DBDriverSQLite, Database: filepath.Join(root, "images.db")},
			}
			tt.modify(&config)
			server, err := NewServer(config)
			assert.Error(t, err)
			assert.Nil(t, server)
		})
	}
}

func TestPostImage(t *testing.T) {
	server, router := newTestServer(t)
	content := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	w := upload(t, router, "photo.PNG", content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^http://host/uploads/[0-9a-f]{20}\.png$`, resp.URL)
	assert.Equal(t, resp.URL, w.Header().Get("Location"))

	// 檔案內容
	name := strings.TrimPrefix(resp.URL, "http://host/uploads/")
	got, err := os.ReadFile(server.diskStore.FullPath(filepath.Join("uploads", name)))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// 資料庫紀錄
	var record models.Image
	require.NoError(t, server.db.Where("image_name = ?", name).First(&record).Error)
	assert.Equal(t, resp.URL, record.ImageURL)
}

func TestPostImage_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		modify     func(*ServerConfig)
		content    []byte
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unsupported format",
			field:      "file",
			filename:   "anim.gif",
			content:    []byte("GIF89a"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "The uploaded file should be one of: jpeg, jpg, png, bmp, webp, ico",
		},
		{
			name:       "missing file field",
			field:      "image",
			filename:   "photo.png",
			content:    []byte("png"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Missing image file in form field \"file\"",
		},
		{
			name:       "file too large",
			field:      "file",
			filename:   "photo.png",
			modify:     func(c *ServerConfig) { c.Upload.MaxSize = 8 },
			content:    bytes.Repeat([]byte{0x89}, 16),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantMsg:    "reach limit of 8 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var modify []func(*ServerConfig)
			if tt.modify != nil {
				modify = append(modify, tt.modify)
			}
			server, router := newTestServer(t, modify...)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, newUploadRequest(t, tt.field, tt.filename, tt.content))
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Message)
			assert.Equal(t, tt.wantMsg, *resp.Message)

			// 不應該留下任何檔案或紀錄
			entries, err := os.ReadDir(server.diskStore.FullPath("uploads"))
			if err == nil {
				assert.Empty(t, entries)
			}
			var count int64
			require.NoError(t, server.db.Model(&models.Image{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestDeleteImageName(t *testing.T) {
	server, router := newTestServer(t)

	w := upload(t, router, "avatar.webp", []byte("RIFF....WEBP"))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	name := strings.TrimPrefix(resp.URL, "http://host/uploads/")
	fullPath := server.diskStore.FullPath(filepath.Join("uploads", name))

	// 刪除存在的檔案
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/image/"+name, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := os.Stat(fullPath)
	assert.True(t, os.IsNotExist(err))

	// 再刪除一次仍然成功
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/image/"+name, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// 資料庫紀錄保留
	var count int64
	require.NoError(t, server.db.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteImageName_InvalidName(t *testing.T) {
	_, router := newTestServer(t)

	for _, name := range []string{"images.db", "0123456789abcdef0123.gif", "0123456789abcdef0123.png.tmp", "ABCDEF0123456789ABCD.png"} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/image/"+name, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestServeStatic(t *testing.T) {
	_, router := newTestServer(t)
	content := []byte("\xff\xd8\xff\xe0fake-jpeg")

	w := upload(t, router, "photo.jpg", content)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(resp.URL, "http://host"), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}

func TestServeStatic_Disabled(t *testing.T) {
	_, router := newTestServer(t, func(c *ServerConfig) { c.Upload.ServeStatic = false })

	w := upload(t, router, "photo.jpg", []byte("jpg"))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(resp.URL, "http://host"), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHealthz(t *testing.T) {
	server, router := newTestServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// 關閉資料庫後應回報不可用
	require.NoError(t, server.Close())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	_, router := newTestServer(t)

	w := upload(t, router, "photo.bmp", []byte("BM"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `imagehost_operations_total{operation="upload",result="success"}`)
	assert.Contains(t, body, `imagehost_http_requests_total{method="POST",path="/image",status="201"}`)
}
