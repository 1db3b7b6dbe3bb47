package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of a JSON body is buffered for the log.
const maxLoggedBody = 64 << 10

type respWriter struct {
	gin.ResponseWriter
	status int
	size   int
}

func (w *respWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *respWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
func (w *respWriter) WriteString(s string) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	n, err := w.ResponseWriter.WriteString(s)
	w.size += n
	return n, err
}

// 敏感字段 key（query 与 JSON body 统一按 key）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func sensitive(k string) bool {
	_, ok := sensitiveKeys[strings.ToLower(k)]
	return ok
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if sensitive(k) {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// maskJSON walks decoded JSON and masks sensitive keys at any depth.
func maskJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if sensitive(k) {
				t[k] = "****"
			} else {
				t[k] = maskJSON(inner)
			}
		}
	case []any:
		for i := range t {
			t[i] = maskJSON(t[i])
		}
	}
	return v
}

// captureBody returns the log form of the request body and leaves
// c.Request.Body readable for the handler. ok is false when there is no body.
func captureBody(c *gin.Context) (body string, ok bool) {
	req := c.Request
	if req.Body == nil || req.ContentLength == 0 {
		return "", false
	}
	ct := req.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return "Non-JSON body, Content-Type: " + ct, true
	}

	head, err := io.ReadAll(io.LimitReader(req.Body, maxLoggedBody+1))
	req.Body = readCloser{io.MultiReader(bytes.NewReader(head), req.Body), req.Body}
	if err != nil {
		return "Unreadable body", true
	}
	if len(head) == 0 {
		return "", false
	}
	if len(head) > maxLoggedBody {
		return "Truncated JSON body", true
	}

	var v any
	if err := json.Unmarshal(head, &v); err != nil {
		return "Invalid JSON", true
	}
	out, err := json.Marshal(maskJSON(v))
	if err != nil {
		return "Invalid JSON", true
	}
	return string(out), true
}

type readCloser struct {
	io.Reader
	io.Closer
}

// responseTime is seconds rounded to 5 decimals.
func responseTime(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e5) / 1e5
}

func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		body, hasBody := captureBody(c)
		w := &respWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := w.status
		if status == 0 {
			status = w.ResponseWriter.Status()
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Float64("response_time", responseTime(time.Since(start))),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", w.size),
		}
		if hasBody {
			fields = append(fields, zap.String("body", body))
		}
		if len(c.Errors) > 0 {
			l.Warn("HTTP", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		l.Info("HTTP", fields...)
	}
}
