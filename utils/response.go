package utils

import "github.com/gin-gonic/gin"

// JSONResponse is the envelope every terminal API endpoint answers with.
// The kiosk page and the admin screen scripts rely on code/message/data
// being present on every response.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes the envelope with an explicit HTTP status.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success answers 200 with code 0, the shape the kiosk page polls for.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error answers with a numbered application code so the kiosk scripts can
// tell auth failures apart from validation ones.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
