package public

import (
	"strings"

	handlershared "github.com/jessmaeeGit/kimklesordering-api/internal/http/handlers/shared"
	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionKeyHeader = "X-Session-Key"

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// currentSession 解析显式会话：登录用户取上下文 user_id，
// 游客取 X-Session-Key 请求头。两者都没有时返回 400。
func currentSession(c *gin.Context) (service.Session, bool) {
	if value, ok := c.Get("user_id"); ok {
		if userID, ok := value.(uint); ok && userID > 0 {
			return service.UserSession(userID), true
		}
	}
	guestKey := strings.TrimSpace(c.GetHeader(sessionKeyHeader))
	if guestKey != "" {
		return service.GuestSession(guestKey), true
	}
	respondError(c, response.CodeBadRequest, "session key required", nil)
	return service.Session{}, false
}
