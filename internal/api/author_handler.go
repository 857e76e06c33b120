package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/blogging-tool/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthorHandler handles the author's dashboard and article lifecycle
type AuthorHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthorHandler creates a new AuthorHandler
func NewAuthorHandler(services *service.Services, log zerolog.Logger) *AuthorHandler {
	return &AuthorHandler{
		services: services,
		log:      log.With().Str("handler", "author").Logger(),
	}
}

// Dashboard handles GET /author
func (h *AuthorHandler) Dashboard(c *gin.Context) {
	dash, err := h.services.Article.Dashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleError(c, h.log, err, "Failed to load dashboard")
		return
	}

	render(c, http.StatusOK, "author_home.html", gin.H{
		"published":  dash.Published,
		"drafts":     dash.Drafts,
		"blogTitle":  dash.BlogTitle,
		"authorName": dash.AuthorName,
	})
}

// CreateDraft handles POST /author/create-draft
func (h *AuthorHandler) CreateDraft(c *gin.Context) {
	article, err := h.services.Article.CreateDraft(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleError(c, h.log, err, "Failed to create draft")
		return
	}
	c.Redirect(http.StatusFound, "/author/edit/"+strconv.FormatInt(article.ID, 10))
}

// EditPage handles GET /author/edit/:id
func (h *AuthorHandler) EditPage(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	article, err := h.services.Article.GetForEdit(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		handleError(c, h.log, err, "Failed to load article")
		return
	}
	render(c, http.StatusOK, "edit_article.html", gin.H{"article": article})
}

// Edit handles POST /author/edit/:id
func (h *AuthorHandler) Edit(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	var form validation.ArticleForm
	if !bindForm(c, &form) {
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), id, currentUserID(c), &form)
	if err != nil {
		if errs, ok := service.ValidationErrors(err); ok {
			render(c, http.StatusBadRequest, "edit_article.html", gin.H{
				"article": article,
				"errors":  errs,
			})
			return
		}
		handleError(c, h.log, err, "Failed to update article")
		return
	}
	c.Redirect(http.StatusFound, "/author")
}

// Publish handles POST /author/publish/:id
func (h *AuthorHandler) Publish(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	err := h.services.Article.Publish(c.Request.Context(), id, currentUserID(c))
	if errors.Is(err, service.ErrPublishIncomplete) {
		session.StateOf(c).PublishMessage = service.PublishIncompleteMessage
		c.Redirect(http.StatusFound, "/author")
		return
	}
	if err != nil {
		handleError(c, h.log, err, "Failed to publish article")
		return
	}
	c.Redirect(http.StatusFound, "/author")
}

// Delete handles POST /author/delete/:id
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		notFound(c)
		return
	}

	if err := h.services.Article.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		handleError(c, h.log, err, "Failed to delete article")
		return
	}
	c.Redirect(http.StatusFound, "/author")
}
