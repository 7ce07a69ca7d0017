package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// ExposedHeaders 는 브라우저에서 읽을 수 있어야 하는 사용량 헤더 목록이다.
var ExposedHeaders = []string{
	"X-User-Session",
	"X-User-ID",
	"X-Daily-Usage",
	"X-Daily-Tokens",
	"X-User-Language",
	RequestIDHeader,
}

// CORS 는 교차 출처 요청 허용 미들웨어다.
func CORS(cfg *config.Config) gin.HandlerFunc {
	return cors.New(newCORSConfig(cfg))
}

func newCORSConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := []string{"*"}
	if cfg != nil && len(cfg.CORS.AllowOrigins) > 0 {
		origins = cfg.CORS.AllowOrigins
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = ExposedHeaders
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}
