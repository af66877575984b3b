package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"imagehost/adapters/disk"
	"imagehost/adapters/imagestore"
	internalS3 "imagehost/adapters/s3"
)

type ErrorResponse struct {
	Message *string `json:"message,omitempty"`
}

type ImageResponse struct {
	URL string `json:"url"`
}

type ServerImpl struct {
	images    *imagestore.Service
	diskStore *disk.Store // 只有使用本機儲存時才會設定
	db        *gorm.DB

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化儲存層
	var storage imagestore.Storage
	var diskStore *disk.Store
	switch config.Storage.Driver {
	case StorageDriverDisk, "":
		store, err := disk.NewStore(config.Storage.Root)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create disk store, err=%w", op, err)
		}
		storage, diskStore = store, store
	case StorageDriverS3:
		s3Operator, err := internalS3.NewS3OperatorFromConfig(context.Background(), internalS3.Config{
			Endpoint:        config.S3.Endpoint,
			Region:          config.S3.Region,
			Bucket:          config.S3.Bucket,
			AccessKeyID:     config.S3.AccessKeyID,
			SecretAccessKey: config.S3.SecretAccessKey,
			UsePathStyle:    config.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create S3 operator, err=%w", op, err)
		}
		storage = s3Operator
	default:
		return nil, fmt.Errorf("[%s] Unsupported storage driver: %s", op, config.Storage.Driver)
	}

	// 初始化圖片服務
	images, err := imagestore.NewService(
		storage,
		config.HostServer,
		imagestore.WithLogger(slog.Default()),
		imagestore.WithMaxSize(config.Upload.MaxSize),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create image service, err=%w", op, err)
	}

	// 初始化資料庫連線
	db, err := openDatabase(config.DB)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to open database, err=%w", op, err)
	}

	return &ServerImpl{
		images:    images,
		diskStore: diskStore,
		db:        db,
		config:    config,
	}, nil
}

func (impl *ServerImpl) Close() error {
	const op = "Close"
	sqlDB, err := impl.db.DB()
	if err != nil {
		return fmt.Errorf("[%s] Fail to get database handle, err=%w", op, err)
	}
	return sqlDB.Close()
}

// RegisterHandlers 將所有路由註冊到 router
func (impl *ServerImpl) RegisterHandlers(router gin.IRouter) {
	router.Use(MetricsMiddleware())
	router.POST("/image", impl.PostImage)
	router.DELETE("/image/:name", impl.DeleteImageName)
	router.GET("/healthz", impl.GetHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 由本服務直接提供上傳的圖片
	if impl.config.Upload.ServeStatic && impl.diskStore != nil {
		urlPath := path.Clean("/" + filepath.ToSlash(impl.config.Upload.Folder))
		if urlPath != "/" {
			router.Static(urlPath, impl.diskStore.FullPath(impl.config.Upload.Folder))
		}
	}
}

// Upload an image
// (POST /image)
func (impl *ServerImpl) PostImage(c *gin.Context) {
	const op = "PostImage"
	header, err := c.FormFile("file")
	if err != nil {
		OperationsTotal.WithLabelValues(operationUpload, resultRejected).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: lo.ToPtr("Missing image file in form field \"file\""),
		})
		return
	}

	url, err := impl.images.Upload(c.Request.Context(), imagestore.NewMultipartFile(header), impl.config.Upload.Folder, impl.db)
	var formatErr *imagestore.FormatNotSupportedError
	var limitErr *imagestore.ReachLimitError
	switch {
	case errors.As(err, &formatErr):
		OperationsTotal.WithLabelValues(operationUpload, resultRejected).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: lo.ToPtr(formatErr.Error()),
		})
		return
	case errors.As(err, &limitErr):
		OperationsTotal.WithLabelValues(operationUpload, resultRejected).Inc()
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: lo.ToPtr(limitErr.Error()),
		})
		return
	case err != nil:
		OperationsTotal.WithLabelValues(operationUpload, resultError).Inc()
		slog.Error("Fail to upload image", slog.String("op", op), slog.String("filename", header.Filename), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: lo.ToPtr("Internal server error"),
		})
		return
	}

	OperationsTotal.WithLabelValues(operationUpload, resultSuccess).Inc()
	UploadedBytesTotal.Add(float64(header.Size))
	c.Header("Location", url)
	c.JSON(http.StatusCreated, ImageResponse{URL: url})
}

// Delete an uploaded image file
// (DELETE /image/{name})
func (impl *ServerImpl) DeleteImageName(c *gin.Context) {
	name := c.Param("name")
	if !imagestore.IsGeneratedFilename(name) {
		OperationsTotal.WithLabelValues(operationDelete, resultRejected).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: lo.ToPtr("Invalid image name"),
		})
		return
	}
	// 刪除失敗只記錄，不影響回應
	if err := impl.images.Delete(c.Request.Context(), filepath.Join(impl.config.Upload.Folder, name)); err != nil {
		OperationsTotal.WithLabelValues(operationDelete, resultError).Inc()
	} else {
		OperationsTotal.WithLabelValues(operationDelete, resultSuccess).Inc()
	}
	c.Status(http.StatusNoContent)
}

// Check database connectivity
// (GET /healthz)
func (impl *ServerImpl) GetHealthz(c *gin.Context) {
	const op = "GetHealthz"
	sqlDB, err := impl.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		slog.Warn("Database is unreachable", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
