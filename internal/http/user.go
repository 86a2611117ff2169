package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

// updateUser changes the caller's display name and optionally their profile
// image, uploaded as multipart field "profileImage".
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	username := c.PostForm("username")

	var profileImageURL string
	if file, err := c.FormFile("profileImage"); err == nil && file != nil {
		if h.storage == nil || h.bucket == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
			return
		}
		obj, err := h.uploadFormFile(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload profile image failed"})
			return
		}
		profileImageURL = obj.URL
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id, username, profileImageURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
