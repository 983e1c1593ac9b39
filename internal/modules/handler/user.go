package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/modules/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

// GetMe godoc
//
//	@Summary		Current user
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	u, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

type UpdateProfileReq struct {
	AvatarURL *string        `json:"avatar_url" example:"https://cdn.example.com/a.png"`
	Bio       *string        `json:"bio" example:"Weekend hiker"`
	Settings  map[string]any `json:"settings"`
}

// UpdateMe godoc
//
//	@Summary		Update profile
//	@Description	Only the fields present are changed.
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.UpdateProfileReq	true	"UpdateProfile payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req := UpdateProfileReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Settings:  req.Settings,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

// GetUser godoc
//
//	@Summary		User profile
//	@Tags			user
//	@Produce		json
//	@Param			user_id	path	string	true	"User ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.Profile}
//	@Failure		404	{object}	serializer.Response
//	@Router			/users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	p, err := h.svc.Profile(c.Request.Context(), viewerID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// Follow godoc
//
//	@Summary		Follow user
//	@Tags			user
//	@Produce		json
//	@Param			user_id	path	string	true	"User ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/users/{user_id}/follow [post]
func (h *UserHandler) Follow(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.Follow(c.Request.Context(), viewerID, userID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// Unfollow godoc
//
//	@Summary		Unfollow user
//	@Tags			user
//	@Produce		json
//	@Param			user_id	path	string	true	"User ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		404	{object}	serializer.Response	"Not following"
//	@Router			/users/{user_id}/follow [delete]
func (h *UserHandler) Unfollow(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.Unfollow(c.Request.Context(), viewerID, userID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

type PushTokenReq struct {
	Token string `json:"token" binding:"required" example:"ExponentPushToken[xxxx]"`
}

// SetPushToken godoc
//
//	@Summary		Register push token
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.PushTokenReq	true	"PushToken payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/users/me/push-token [post]
func (h *UserHandler) SetPushToken(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req := PushTokenReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.SetPushToken(c.Request.Context(), userID, req.Token); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
