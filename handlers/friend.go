package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialnet/middleware"
	"socialnet/models"
	"socialnet/services"
	"socialnet/utils"
)

type SendFriendRequestRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

type SendFriendRequestResponse struct {
	Message string                       `json:"message"`
	Request models.FriendRequestResponse `json:"request"`
}

type FriendHandler struct {
	friends *services.FriendService
}

func NewFriendHandler(friends *services.FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

func (h *FriendHandler) SendFriendRequest(c *gin.Context) {
	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	fr, err := h.friends.Send(c.Request.Context(), middleware.GetUserID(c), req.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Created(c, SendFriendRequestResponse{
		Message: "Friend request sent",
		Request: *fr.ToResponse(),
	})
}

func (h *FriendHandler) RespondFriendRequest(c *gin.Context) {
	action := c.Param("action")

	_, err := h.friends.Respond(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), action)
	if err != nil {
		respondError(c, err)
		return
	}

	if action == services.ActionAccept {
		utils.Message(c, http.StatusOK, "Friend request accepted")
		return
	}
	utils.Message(c, http.StatusOK, "Friend request rejected")
}

func (h *FriendHandler) GetFriends(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, models.ToResponses(friends))
}

func (h *FriendHandler) GetPendingRequests(c *gin.Context) {
	pending, err := h.friends.ListPending(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]models.FriendRequestResponse, 0, len(pending))
	for i := range pending {
		out = append(out, *pending[i].ToResponse())
	}
	utils.Success(c, out)
}
