package request

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"podcast-catalog/internal/shared/response"
)

func init() {
	// request body phải khớp schema: field lạ bị từ chối
	binding.EnableDecoderDisallowUnknownFields = true
}

// BindJSON parse body vào req, trả 400 nếu body hỏng hoặc có field lạ
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.InvalidBody(c, err)
		return false
	}
	return true
}
