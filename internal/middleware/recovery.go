package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/httperror"
)

// Recovery 는 panic 을 500 응답으로 바꾸는 미들웨어다.
// http.ErrAbortHandler 는 다시 panic 해서 서버가 연결을 끊게 한다.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(recovered)
			}

			logger.ErrorContext(c.Request.Context(), "http_panic_recovered",
				"request_id", GetRequestID(c),
				"path", c.Request.URL.Path,
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			status, payload := httperror.Response(httperror.NewInternalError())
			c.AbortWithStatusJSON(status, payload)
		}()

		c.Next()
	}
}
