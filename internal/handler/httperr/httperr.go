package httperr

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int  `json:"-"`
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	resp := Response{Status: status, Success: false}
	resp.Error.Message = msg
	resp.Detail = detail

	if err != nil {
		// Pointer, not value: Context.Error only keeps Type and Meta when it
		// receives a *gin.Error.
		_ = c.Error(&gin.Error{
			Err:  err,
			Type: gin.ErrorTypePublic,
			Meta: resp,
		})
	}
	c.AbortWithStatusJSON(status, resp)
}
