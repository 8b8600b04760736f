package statusapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// Recovery turns a handler panic into a 500 AppError body and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", rec),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				appErr := errors.Internal(fmt.Errorf("panic: %v", rec))
				c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}

// RequestID reuses the caller's X-Request-Id or generates one, echoes it
// back and stores it in the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger logs each request at a level chosen by status code. Probe
// endpoints are logged at debug so they do not flood the output.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":              c.Request.Method,
			"path":                c.FullPath(),
			"status":              status,
			logger.FieldDuration:  time.Since(start).Milliseconds(),
			logger.FieldRequestID: c.GetString(logger.FieldRequestID),
		}
		if fields["path"] == "" {
			fields["path"] = c.Request.URL.Path
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("Request completed", fields)
		case status >= http.StatusBadRequest && !isProbe(c.Request.URL.Path):
			l.Warn("Request completed", fields)
		default:
			l.Debug("Request completed", fields)
		}
	}
}

func isProbe(path string) bool {
	return path == "/readyz" || path == "/livez"
}
