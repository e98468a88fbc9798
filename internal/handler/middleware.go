package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダー
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// HTTPObserver はリクエスト1件ごとの記録先
type HTTPObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// AccessLog はリクエストIDを振り、処理結果をzerologとメトリクスに残すミドルウェア
func AccessLog(log zerolog.Logger, observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(requestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()

		// パスはルート定義（:id付き）で集計する
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		if observer != nil {
			observer.ObserveHTTPRequest(c.Request.Method, path, status, elapsed)
		}

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("http_request")
	}
}
