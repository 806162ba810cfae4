package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamgrid/backend/internal/membership"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// Error renders a service failure: membership violations map to a status by
// kind (absent entities are 404, every other rule violation 400); anything
// unclassified is a store/internal failure and renders as 500 with a generic
// message.
func Error(c *gin.Context, err error) {
	switch kind := membership.KindOf(err); {
	case kind == membership.KindNotFound:
		NotFound(c, err.Error())
	case kind != 0:
		BadRequest(c, err.Error())
	default:
		Internal(c, "internal error")
	}
}
