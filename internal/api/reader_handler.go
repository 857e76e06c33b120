package api

import (
	"net/http"
	"strconv"

	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/blogging-tool/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReaderHandler handles the public reader pages
type ReaderHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReaderHandler creates a new ReaderHandler
func NewReaderHandler(services *service.Services, log zerolog.Logger) *ReaderHandler {
	return &ReaderHandler{
		services: services,
		log:      log.With().Str("handler", "reader").Logger(),
	}
}

// List handles GET /reader
func (h *ReaderHandler) List(c *gin.Context) {
	articles, err := h.services.Reader.ListPublished(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "Failed to list articles")
		return
	}
	render(c, http.StatusOK, "reader_home.html", gin.H{"articles": articles})
}

// View handles GET /reader/article/:id. A view is counted once per session.
func (h *ReaderHandler) View(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	st := session.StateOf(c)
	count := !st.HasViewed(id)

	page, err := h.services.Reader.ViewArticle(c.Request.Context(), id, currentUserID(c), count)
	if err != nil {
		handleError(c, h.log, err, "Failed to load article")
		return
	}
	if count && page.Article.IsPublished() {
		st.MarkViewed(id)
	}

	render(c, http.StatusOK, "article.html", gin.H{
		"article":     page.Article,
		"comments":    page.Comments,
		"likeCount":   page.LikeCount,
		"likeMessage": st.PopLikeMessage(),
	})
}

// Like handles POST /reader/article/:id/like
func (h *ReaderHandler) Like(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	userID := currentUserID(c)
	if userID == 0 {
		session.StateOf(c).LikeMessage = service.LikeLoginMessage
		redirectToArticle(c, id)
		return
	}

	if _, err := h.services.Reader.Like(c.Request.Context(), id, userID); err != nil {
		handleError(c, h.log, err, "Failed to like article")
		return
	}
	redirectToArticle(c, id)
}

// Comment handles POST /reader/article/:id/comment
func (h *ReaderHandler) Comment(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	var form validation.CommentForm
	if !bindForm(c, &form) {
		return
	}

	if _, err := h.services.Reader.Comment(c.Request.Context(), id, &form); err != nil {
		handleError(c, h.log, err, "Failed to add comment")
		return
	}
	redirectToArticle(c, id)
}

func redirectToArticle(c *gin.Context, id int64) {
	c.Redirect(http.StatusFound, "/reader/article/"+strconv.FormatInt(id, 10))
}
