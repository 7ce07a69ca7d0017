package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/httperror"
)

// AdminAuth 는 관리자 API 용 Bearer 인증 미들웨어다.
// 시크릿이 비어 있으면 모든 요청을 거부한다.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	expected := ""
	if cfg != nil {
		expected = strings.TrimSpace(cfg.Admin.Secret)
	}

	return func(c *gin.Context) {
		provided := extractBearer(c)
		if expected == "" || provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			status, payload := httperror.Response(httperror.NewUnauthorized())
			c.AbortWithStatusJSON(status, payload)
			return
		}

		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	if c == nil {
		return ""
	}

	authValue := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authValue) < 7 || !strings.EqualFold(authValue[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authValue[7:])
}
