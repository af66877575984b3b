package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP 指標
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagehost_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagehost_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// 圖片操作指標
var (
	// OperationsTotal 依操作與結果統計圖片的上傳與刪除次數
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagehost_operations_total",
			Help: "Total number of image operations",
		},
		[]string{"operation", "result"},
	)

	// UploadedBytesTotal 成功上傳的位元組總數
	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagehost_uploaded_bytes_total",
			Help: "Total number of bytes of successfully uploaded images",
		},
	)
)

const (
	operationUpload = "upload"
	operationDelete = "delete"

	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
)

// MetricsMiddleware 記錄每個請求的次數與耗時；
// path 使用 gin 的路由樣板，避免路徑參數造成過高的 cardinality。
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
