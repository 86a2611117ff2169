package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "authUserID"

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:         userToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:         userToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) googleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.auth.LoginWithGoogle(c.Request.Context(), req.Credential)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:         userToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	token := h.refreshTokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token is required"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) logout(c *gin.Context) {
	token := h.refreshTokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token is required"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// refreshTokenFromRequest reads the refresh token from the JSON body, falling
// back to the bearer header.
func (h *Handler) refreshTokenFromRequest(c *gin.Context) string {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	return bearerToken(c)
}

// requireAuth guards protected routes. The access token is trusted on
// signature and expiry alone; the user id travels down via the gin context.
func (h *Handler) requireAuth(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth token"})
		return
	}

	userID, err := h.auth.Authenticate(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth token"})
		return
	}

	c.Set(contextUserIDKey, userID)
	c.Next()
}

func currentUserID(c *gin.Context) int64 {
	id, _ := c.Get(contextUserIDKey)
	userID, _ := id.(int64)
	return userID
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
