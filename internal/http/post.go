package http

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chefin-server/internal/domain"
	"chefin-server/internal/repository"
	"chefin-server/internal/service"
	"chefin-server/internal/storage"
)

type meetingPointPayload struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// postRequest carries the client-editable fields of a post. There is no
// owner field: the owner is always the authenticated caller.
type postRequest struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	Image         string              `json:"image"`
	Labels        []string            `json:"labels"`
	WhatsIncluded []string            `json:"whatsIncluded"`
	Overview      string              `json:"overview"`
	MeetingPoint  meetingPointPayload `json:"meetingPoint"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (r postRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.Image,
		Labels:        r.Labels,
		WhatsIncluded: r.WhatsIncluded,
		Overview:      r.Overview,
		MeetingPoint: domain.MeetingPoint{
			Address:   r.MeetingPoint.Address,
			Latitude:  r.MeetingPoint.Lat,
			Longitude: r.MeetingPoint.Lng,
		},
	}
}

func (h *Handler) listPosts(c *gin.Context) {
	var filter repository.PostFilter
	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId filter"})
			return
		}
		filter.UserID = &userID
	}

	posts, err := h.posts.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listMyPosts(c *gin.Context) {
	posts, err := h.posts.ListByOwner(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUserID(c), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), currentUserID(c), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) addReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.AddReview(c.Request.Context(), currentUserID(c), id, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

// upload stores a multipart "file" in object storage and returns its public
// URL for use in subsequent post payloads.
func (h *Handler) upload(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	obj, err := h.uploadFormFile(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": obj.URL, "key": obj.Key})
}

func (h *Handler) uploadFormFile(c *gin.Context, file *multipart.FileHeader) (storage.Object, error) {
	src, err := file.Open()
	if err != nil {
		return storage.Object{}, err
	}
	defer src.Close()

	return h.storage.Upload(c.Request.Context(), storage.UploadInput{
		Bucket:      h.bucket,
		KeyPrefix:   h.keyPrefix,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        src,
	})
}
