package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes the standard error envelope. Plain errors are wrapped
// as internal errors so no store detail reaches the client.
func RespondError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	c.JSON(appErr.Status, appErr.envelope())
}

// RespondValidation is a shorthand for request binding failures.
func RespondValidation(c *gin.Context, err error) {
	RespondError(c, ErrValidation(err.Error()))
}
