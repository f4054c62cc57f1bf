package handlers

import (
	"net/http"
	"strconv"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostHandler handles HTTP requests related to feed posts
type PostHandler struct {
	postRepository repositories.PostRepository
	likeRepository repositories.LikeRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	likeRepo repositories.LikeRepository,
	userRepo repositories.UserRepository,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		likeRepository: likeRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers post and feed routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/feed", h.GetFeed)
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
}

// PostDetail is a post enriched with its author and the caller's like state
type PostDetail struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
}

// CreatePost creates a feed post authored by the current user
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := models.Post{
		UserID:   userID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), &post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post with author and like state
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrich(*post, userID))
}

// GetUserPosts retrieves a user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	authorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	skip, limit := pageParams(c)
	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), uint(authorID), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichAll(posts, userID))
}

// DeletePost deletes a post; only its author may do this
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// GetFeed retrieves the global post feed, newest first
func (h *PostHandler) GetFeed(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	skip, limit := pageParams(c)
	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichAll(posts, userID))
}

// LikePost records the current user's like; one per user per post
func (h *PostHandler) LikePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}
	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		if err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	liked, err := h.likeRepository.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked")
	}

	if err := h.likeRepository.CreateLike(&models.Like{PostID: postID, UserID: userID}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.IncrementLikesCount(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Post liked"})
}

// UnlikePost removes the current user's like
func (h *PostHandler) UnlikePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := postIDParam(c)
	if err != nil {
		return err
	}
	if err := h.likeRepository.DeleteLike(postID, userID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	}
	if err := h.postRepository.DecrementLikesCount(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) enrich(post models.Post, viewerID uint) PostDetail {
	detail := PostDetail{Post: post}
	if author, err := h.userRepository.GetUserByID(post.UserID); err == nil {
		detail.Author = author.Compact()
	}
	if liked, err := h.likeRepository.HasUserLikedPost(post.ID.Hex(), viewerID); err == nil {
		detail.IsLiked = liked
	}
	// the like rows are authoritative, the counter on the document can drift
	if count, err := h.likeRepository.GetLikesCountForPost(post.ID.Hex()); err == nil {
		detail.LikesCount = int(count)
	}
	return detail
}

func (h *PostHandler) enrichAll(posts []models.Post, viewerID uint) []PostDetail {
	details := make([]PostDetail, 0, len(posts))
	for _, post := range posts {
		details = append(details, h.enrich(post, viewerID))
	}
	return details
}

func postIDParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	return id, nil
}

func pageParams(c echo.Context) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return skip, limit
}
