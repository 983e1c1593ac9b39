package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/modules/service"
)

type MediaHandler struct {
	svc service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{svc: s}
}

// UploadVideo godoc
//
//	@Summary		Upload quest video
//	@Description	mp4, mov or m4v, at most 50 MB. Use the returned url as a quest's video_url.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			video	formData	file	true	"Video file"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=blob.ObjectMeta}
//	@Failure		503	{object}	serializer.Response	"Media storage not configured"
//	@Router			/media/videos [post]
func (h *MediaHandler) UploadVideo(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	fh, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("video file is required", err))
		return
	}
	meta, err := h.svc.UploadVideo(c.Request.Context(), fh)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: meta})
}

type DeleteVideoReq struct {
	Key string `json:"key" binding:"required" example:"videos/0b6c1f1e-1111-4222-8333-444455556666.mp4"`
}

// DeleteVideo godoc
//
//	@Summary		Delete quest video
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.DeleteVideoReq	true	"DeleteVideo payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/media/videos [delete]
func (h *MediaHandler) DeleteVideo(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	req := DeleteVideoReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.DeleteVideo(c.Request.Context(), req.Key); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
