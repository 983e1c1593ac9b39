package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/modules/service"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(s service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: s}
}

type AddReviewReq struct {
	Score   int    `json:"score" binding:"required" example:"5"`
	Comment string `json:"comment" example:"Great crowd, would join again"`
}

// ListReviews godoc
//
//	@Summary		List reviews
//	@Description	Reviews of a quest, newest first, with the average score.
//	@Tags			review
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListReviewsOutput}
//	@Router			/quests/{quest_id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), questID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// AddReview godoc
//
//	@Summary		Review quest
//	@Description	One review per user and quest. Awards review xp to the reviewer.
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			quest_id	path	string				true	"Quest ID"	format(uuid)
//	@Param			payload		body	handler.AddReviewReq	true	"AddReview payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.AddReviewOutput}
//	@Failure		409	{object}	serializer.Response	"Already reviewed"
//	@Router			/quests/{quest_id}/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	req := AddReviewReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Add(c.Request.Context(), service.AddReviewInput{
		QuestID: questID,
		UserID:  userID,
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}
