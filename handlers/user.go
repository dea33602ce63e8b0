package handlers

import (
	"github.com/gin-gonic/gin"

	"socialnet/models"
	"socialnet/services"
	"socialnet/utils"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, models.ToResponses(users))
}
