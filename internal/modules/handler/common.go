package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/middleware"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/google/uuid"
)

// callerID returns the authenticated user or writes a 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter or writes a 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("invalid "+name)))
		return uuid.Nil, false
	}
	return id, true
}

func writeErr(c *gin.Context, err error) {
	res := serializer.ServiceErr(err)
	c.JSON(res.Code, res)
}
