package public

import (
	"strings"

	handlershared "github.com/glotree/pbb-ledger/internal/http/handlers/shared"
	"github.com/glotree/pbb-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

const sessionTokenHeader = "X-Session-Token"

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithData(c *gin.Context, code int, key string, err error, data interface{}) {
	handlershared.RespondErrorWithData(c, code, key, err, data)
}

// sessionToken 读取店面会话标识，没有就拒绝
func sessionToken(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.GetHeader(sessionTokenHeader))
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return token, true
}
