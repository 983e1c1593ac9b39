package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glitch-app/glitch/internal/modules/serializer"
	"github.com/glitch-app/glitch/internal/modules/service"
)

type QuestHandler struct {
	svc       service.QuestService
	discovery service.DiscoveryService
	quota     service.QuotaService
}

func NewQuestHandler(s service.QuestService, discovery service.DiscoveryService, quota service.QuotaService) *QuestHandler {
	return &QuestHandler{svc: s, discovery: discovery, quota: quota}
}

type CreateQuestReq struct {
	Title           string   `json:"title" binding:"required" example:"Pickup football at the park"`
	Description     string   `json:"description" example:"Bring water, we have a ball"`
	Latitude        *float64 `json:"latitude" binding:"required" example:"-1.2921"`
	Longitude       *float64 `json:"longitude" binding:"required" example:"36.8219"`
	Category        string   `json:"category" example:"sports"`
	MaxParticipants int      `json:"max_participants" example:"10"`
	VideoURL        *string  `json:"video_url"`
}

// CreateQuest godoc
//
//	@Summary		Create quest
//	@Description	Create a quest at a location. It expires three hours after creation. Free accounts may create one quest per rolling 24 hours.
//	@Tags			quest
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateQuestReq	true	"CreateQuest payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Quest}
//	@Failure		400	{object}	serializer.Response
//	@Failure		403	{object}	serializer.Response	"Quota exceeded"
//	@Router			/quests [post]
func (h *QuestHandler) CreateQuest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req := CreateQuestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	q, err := h.svc.Create(c.Request.Context(), service.CreateQuestInput{
		CreatorID:       userID,
		Title:           req.Title,
		Description:     req.Description,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		Category:        req.Category,
		MaxParticipants: req.MaxParticipants,
		VideoURL:        req.VideoURL,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: q})
}

type NearbyReq struct {
	Lat      *float64 `form:"lat" binding:"required" example:"-1.2921"`
	Lng      *float64 `form:"lng" binding:"required" example:"36.8219"`
	Radius   float64  `form:"radius" example:"5"`
	Category string   `form:"category" example:"all"`
}

// NearbyQuests godoc
//
//	@Summary		Nearby quests
//	@Description	Active quests within radius km of a point, nearest first, at most 50.
//	@Tags			quest
//	@Produce		json
//	@Param			lat			query	number	true	"Latitude"
//	@Param			lng			query	number	true	"Longitude"
//	@Param			radius		query	number	false	"Radius in km, default 5"
//	@Param			category	query	string	false	"Category filter, 'all' for none"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]service.NearbyQuest}
//	@Router			/quests/nearby [get]
func (h *QuestHandler) NearbyQuests(c *gin.Context) {
	req := NearbyReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.discovery.Nearby(c.Request.Context(), service.NearbyInput{
		Latitude:  *req.Lat,
		Longitude: *req.Lng,
		RadiusKm:  req.Radius,
		Category:  req.Category,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetQuota godoc
//
//	@Summary		Creation quota
//	@Description	Whether the caller can create a quest now and, when not, when the window resets.
//	@Tags			quest
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.QuotaStatus}
//	@Router			/quests/quota [get]
func (h *QuestHandler) GetQuota(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	status, err := h.quota.CanCreate(c.Request.Context(), userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: status})
}

// GetQuest godoc
//
//	@Summary		Get quest
//	@Description	Quest with creator, participants, review summary and the caller's access.
//	@Tags			quest
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.QuestDetail}
//	@Failure		404	{object}	serializer.Response
//	@Router			/quests/{quest_id} [get]
func (h *QuestHandler) GetQuest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	out, err := h.svc.GetDetail(c.Request.Context(), questID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetAccess godoc
//
//	@Summary		Quest access
//	@Description	creator, member or none.
//	@Tags			quest
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=map[string]string}
//	@Router			/quests/{quest_id}/access [get]
func (h *QuestHandler) GetAccess(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	access, err := h.svc.Access(c.Request.Context(), questID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"access": access}})
}

// JoinQuest godoc
//
//	@Summary		Join quest
//	@Tags			quest
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.QuestParticipant}
//	@Failure		403	{object}	serializer.Response	"Quest is full"
//	@Failure		404	{object}	serializer.Response	"Quest missing, inactive or expired"
//	@Failure		409	{object}	serializer.Response	"Already joined"
//	@Router			/quests/{quest_id}/join [post]
func (h *QuestHandler) JoinQuest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	p, err := h.svc.Join(c.Request.Context(), questID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

// LeaveQuest godoc
//
//	@Summary		Leave quest
//	@Description	Leaving a quest that already expired succeeds as a no-op.
//	@Tags			quest
//	@Produce		json
//	@Param			quest_id	path	string	true	"Quest ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		404	{object}	serializer.Response	"Not a participant"
//	@Router			/quests/{quest_id}/leave [delete]
func (h *QuestHandler) LeaveQuest(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	questID, ok := pathID(c, "quest_id")
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), questID, userID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
