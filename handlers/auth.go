package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialnet/middleware"
	"socialnet/models"
	"socialnet/services"
	"socialnet/utils"
)

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SignupResponse struct {
	Message string              `json:"message"`
	User    models.UserResponse `json:"user"`
}

type AuthHandler struct {
	users  *services.UserService
	tokens *utils.TokenManager
}

func NewAuthHandler(users *services.UserService, tokens *utils.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func Welcome(c *gin.Context) {
	utils.Message(c, http.StatusOK, "Welcome to social network.")
}

func Health(c *gin.Context) {
	utils.Success(c, gin.H{"status": "ok"})
}

// Signup leaves field checks to the service so the client always sees the
// first violated rule.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Signup(c.Request.Context(), services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Created(c, SignupResponse{
		Message: "User created successfully",
		User:    *user.ToResponse(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	claims, err := h.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	// users deleted since the token was issued cannot refresh
	if _, err := h.users.Get(c.Request.Context(), claims.UserID); err != nil {
		respondError(c, utils.ErrInvalidToken)
		return
	}

	pair, err := h.tokens.Issue(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, pair)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, user.ToResponse())
}
