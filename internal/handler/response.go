package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/httperror"
)

// maxBodyBytes 는 대화 요청 본문의 최대 크기다.
const maxBodyBytes = 64 << 10

// chatRequest 는 두 대화 엔드포인트의 요청 본문이다.
// message 가 문자열이 아닌 경우도 누락으로 처리하기 위해 원본 값을 받는다.
type chatRequest struct {
	Message json.RawMessage `json:"message"`
}

// writeError: 에러 응답을 작성합니다.
func writeError(c *gin.Context, err error) {
	status, payload := httperror.Response(err)
	c.JSON(status, payload)
}

// messageReader: 속도 제한 통과 후에만 본문을 읽도록 지연 함수로 감쌉니다.
func messageReader(c *gin.Context) func() (string, error) {
	return func() (string, error) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		var req chatRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return "", errors.Join(admission.ErrMissingMessage, err)
		}
		if len(req.Message) == 0 {
			return "", admission.ErrMissingMessage
		}

		var message string
		if err := json.Unmarshal(req.Message, &message); err != nil {
			return "", admission.ErrMissingMessage
		}
		return message, nil
	}
}
