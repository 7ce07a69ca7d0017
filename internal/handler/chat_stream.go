package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/middleware"
)

func (h *ChatHandler) handleStream(c *gin.Context) {
	ctx := c.Request.Context()

	ticket, err := h.service.Admit(ctx, middleware.GetClientIdentity(c), messageReader(c))
	if err != nil {
		writeError(c, err)
		return
	}

	// 헤더 전송 전 실패는 일반 오류 응답으로 처리한다.
	reply, err := h.service.OpenStream(ctx, ticket)
	if err != nil {
		writeError(c, err)
		return
	}

	setUsageHeaders(c, ticket, h.service.Limits())
	c.Header(HeaderUserLanguage, string(reply.Language))
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	if _, err := h.service.Relay(reply, c.Writer); err != nil {
		// 종료 표식 없이 연결을 끊어 클라이언트가 잘린 스트림을 관측하게 한다.
		panic(http.ErrAbortHandler)
	}
}
