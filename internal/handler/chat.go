package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/chat"
	"github.com/Adi4512/nextjsaichattool/internal/httperror"
	"github.com/Adi4512/nextjsaichattool/internal/middleware"
)

// 사용량 헤더 키입니다.
const (
	HeaderUserSession  = "X-User-Session"
	HeaderUserID       = "X-User-ID"
	HeaderDailyUsage   = "X-Daily-Usage"
	HeaderDailyTokens  = "X-Daily-Tokens"
	HeaderUserLanguage = "X-User-Language"
)

// ChatResponse: 비스트리밍 응답 본문입니다.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatHandler: 대화 API 핸들러입니다.
type ChatHandler struct {
	service *chat.Service
	logger  *slog.Logger
}

// NewChatHandler: 대화 핸들러를 생성합니다.
func NewChatHandler(service *chat.Service, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{service: service, logger: logger}
}

// RegisterRoutes: 대화 라우트를 등록합니다.
func (h *ChatHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/chat-stream", h.handleStream)
	api.POST("/chat", h.handleChat)
}

func (h *ChatHandler) handleChat(c *gin.Context) {
	ctx := c.Request.Context()

	var message string
	if h.service.GateChat() {
		ticket, err := h.service.Admit(ctx, middleware.GetClientIdentity(c), messageReader(c))
		if err != nil {
			writeError(c, err)
			return
		}
		setUsageHeaders(c, ticket, h.service.Limits())
		message = ticket.Message
	} else {
		validated, err := h.service.Validate(messageReader(c))
		if err != nil {
			writeError(c, err)
			return
		}
		message = validated
	}

	text, err := h.service.Complete(ctx, message)
	if err != nil {
		writeError(c, httperror.NewChatFailed())
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: text})
}

func setUsageHeaders(c *gin.Context, ticket *admission.Ticket, limits admission.Limits) {
	c.Header(HeaderUserSession, ticket.Session.Token)
	c.Header(HeaderUserID, ticket.Session.UserID)
	c.Header(HeaderDailyUsage, fmt.Sprintf("%d/%d", ticket.Usage.Requests, limits.MaxDailyRequests))
	c.Header(HeaderDailyTokens, fmt.Sprintf("%d/%d", ticket.Usage.Tokens, limits.MaxDailyTokens))
}
