// Package respond shapes every API response into the envelope the
// showroom clients consume: {isSuccess, statusCode, data, message}.
// Clients treat isSuccess as authoritative regardless of HTTP status.
package respond

import "github.com/gin-gonic/gin"

type Envelope struct {
	IsSuccess  bool        `json:"isSuccess"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
}

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{IsSuccess: true, StatusCode: status, Data: data})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{IsSuccess: true, StatusCode: status, Message: message})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{IsSuccess: false, StatusCode: status, Message: message})
}

// FieldErrors reports structured validation failures with a top-level
// {errors: {field: [messages]}} map, which is what client error
// extractors probe first.
func FieldErrors(c *gin.Context, status int, fields map[string][]string) {
	c.JSON(status, gin.H{
		"isSuccess":  false,
		"statusCode": status,
		"errors":     fields,
		"message":    "validation failed",
	})
}

func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{IsSuccess: false, StatusCode: status, Message: message})
}
