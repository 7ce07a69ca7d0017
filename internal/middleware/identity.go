package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
)

const clientIdentityKey = "client_identity"

// ClientIdentity 는 요청의 클라이언트 식별자를 계산해 컨텍스트에 저장한다.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIdentityKey, admission.IdentityFromRequest(c.Request))
		c.Next()
	}
}

// GetClientIdentity: 컨텍스트의 클라이언트 식별자를 반환합니다.
// 미들웨어가 없으면 요청에서 직접 계산합니다.
func GetClientIdentity(c *gin.Context) string {
	if c == nil {
		return admission.ClientIdentity("", "")
	}
	if value, ok := c.Get(clientIdentityKey); ok {
		if identity, ok := value.(string); ok {
			return identity
		}
	}
	return admission.IdentityFromRequest(c.Request)
}
