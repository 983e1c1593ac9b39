package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/modules/service"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{svc: s}
}

type ListMessagesReq struct {
	Limit  int    `form:"limit,default=50" binding:"omitempty,min=1,max=100" example:"50"`
	Before string `form:"before" example:"MTc1MDAwMDAwMDAwMDAwMDAwMHwwYjZj"`
}

// ListMessages godoc
//
//	@Summary		List chat messages
//	@Description	A page of the quest chat, oldest first. Pass next_cursor as before to load older messages.
//	@Tags			chat
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Param			limit		query	integer	false	"Page size, default 50, max 100"
//	@Param			before		query	string	false	"Cursor from a previous page"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListMessagesOutput}
//	@Failure		403	{object}	serializer.Response	"Not a participant"
//	@Router			/quests/{quest_id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	req := ListMessagesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListMessagesInput{
		QuestID: questID,
		UserID:  userID,
		Limit:   req.Limit,
		Before:  req.Before,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type SendMessageReq struct {
	Message string `json:"message" binding:"required" example:"Running five minutes late"`
}

// SendMessage godoc
//
//	@Summary		Send chat message
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			quest_id	path	string					true	"Quest ID"	format(uuid)
//	@Param			payload		body	handler.SendMessageReq	true	"SendMessage payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=repo.ChatRow}
//	@Failure		403	{object}	serializer.Response	"Not a participant"
//	@Failure		404	{object}	serializer.Response	"Quest no longer active"
//	@Router			/quests/{quest_id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	req := SendMessageReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	row, err := h.svc.Send(c.Request.Context(), service.SendMessageInput{
		QuestID: questID,
		UserID:  userID,
		Message: req.Message,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: row})
}
