package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotencyReplayHeader = "X-Idempotency-Replayed"
	IdempotencyKeyTTL       = 24 * time.Hour
	maxIdempotencyKeyLength = 255
)

type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *slog.Logger
	TTL    time.Duration
}

// capturingWriter copies the response body while it is written.
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// fingerprint binds a key to the route and exact body it was first used with.
func fingerprint(route string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(route))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays the stored response of a POST, PUT or PATCH that was
// already processed under the same Idempotency-Key for the same tenant.
// Reusing a key for a different request is rejected with 422. Only 2xx
// responses are stored so a failed attempt can be retried.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		tenantID := GetTenantID(c)
		if key == "" || tenantID == uuid.Nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Unreadable request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		route := c.Request.Method + " " + c.FullPath()
		fp := fingerprint(route, body)
		ctx := c.Request.Context()

		existing, err := config.Repo.Find(ctx, tenantID, key, time.Now())
		if err != nil {
			logger.Warn("idempotency lookup failed", "error", err, "tenant_id", tenantID)
			c.Next()
			return
		}
		if existing != nil {
			if !existing.Matches(fp) {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayHeader, "true")
			c.Data(existing.StatusCode, existing.ContentType, existing.Body)
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		record := &entity.IdempotencyKey{
			TenantID:    tenantID,
			Key:         key,
			Fingerprint: fp,
			Route:       route,
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			ExpiresAt:   time.Now().Add(ttl),
		}
		if err := config.Repo.Save(ctx, record); err != nil {
			logger.Warn("idempotency key not stored", "error", err, "tenant_id", tenantID)
		}
	}
}
