package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chefin-server/internal/domain"
	"chefin-server/internal/service"
	"chefin-server/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	users     service.UserService
	posts     service.PostService
	storage   storage.Service
	bucket    string
	keyPrefix string
}

func NewHandler(auth service.AuthService, users service.UserService, posts service.PostService, store storage.Service, bucket, keyPrefix string) *Handler {
	return &Handler{
		auth:      auth,
		users:     users,
		posts:     posts,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/google", h.googleLogin)
			auth.POST("/refresh", h.refresh)
			auth.POST("/logout", h.logout)
		}

		posts := api.Group("/post")
		{
			posts.GET("", h.listPosts)
			posts.GET("/:id", h.getPost)
			posts.GET("/myposts", h.requireAuth, h.listMyPosts)
			posts.POST("", h.requireAuth, h.createPost)
			posts.PUT("/:id", h.requireAuth, h.updatePost)
			posts.DELETE("/:id", h.requireAuth, h.deletePost)
			posts.PUT("/:id/review", h.requireAuth, h.addReview)
		}

		users := api.Group("/user", h.requireAuth)
		{
			users.GET("", h.listUsers)
			users.GET("/:id", h.getUser)
			users.PUT("/:id", h.updateUser)
			users.DELETE("/:id", h.deleteUser)
		}

		api.POST("/upload", h.requireAuth, h.upload)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondServiceError maps service errors to HTTP statuses. Anything outside
// the taxonomy is reported as a generic 500; internal detail stays in logs.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidAssertion):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type UserResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	ProfileImgURL string `json:"profileImgUrl,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type ReviewResponse struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type MeetingPointResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type PostResponse struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"userId"`
	Username      string               `json:"username"`
	ProfileImgURL string               `json:"profileImgUrl,omitempty"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Image         string               `json:"image"`
	Labels        []string             `json:"labels"`
	WhatsIncluded []string             `json:"whatsIncluded"`
	Overview      string               `json:"overview"`
	MeetingPoint  MeetingPointResponse `json:"meetingPoint"`
	Reviews       []ReviewResponse     `json:"reviews"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		ProfileImgURL: user.ProfileImageURL,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.Format(time.RFC3339),
	}
}

func postToResponse(post domain.Post) PostResponse {
	resp := PostResponse{
		ID:            post.ID,
		UserID:        post.UserID,
		Username:      post.Username,
		ProfileImgURL: post.ProfileImageURL,
		Title:         post.Title,
		Description:   post.Description,
		Image:         post.ImageURL,
		Labels:        post.Labels,
		WhatsIncluded: post.WhatsIncluded,
		Overview:      post.Overview,
		MeetingPoint: MeetingPointResponse{
			Address: post.MeetingPoint.Address,
			Lat:     post.MeetingPoint.Latitude,
			Lng:     post.MeetingPoint.Longitude,
		},
		Reviews:   make([]ReviewResponse, len(post.Reviews)),
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	if resp.WhatsIncluded == nil {
		resp.WhatsIncluded = []string{}
	}
	for i := range post.Reviews {
		resp.Reviews[i] = ReviewResponse{
			User:    post.Reviews[i].User,
			Rating:  post.Reviews[i].Rating,
			Comment: post.Reviews[i].Comment,
		}
	}
	return resp
}
