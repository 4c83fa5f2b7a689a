package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/http/handlers/common"
	"github.com/ignatzorin/roastblame-backend/internal/http/middleware"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/service"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
)

// maxCreatePostBody - картинка, видео и текст с запасом на заголовки multipart.
const maxCreatePostBody = validation.MaxImageSize + validation.MaxVideoSize + 1<<20

// PostHandler обслуживает ленту роастов.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler создаёт хэндлер.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// ListPosts обрабатывает GET /posts.
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	posts, total, err := h.posts.ListPosts(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	viewer := viewerID(c)
	views := make([]dto.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, dto.NewPostView(post, viewer))
	}

	c.JSON(http.StatusOK, dto.PaginatedPostsResponse{
		Data:       views,
		Pagination: dto.NewPagination(total, limit, offset),
	})
}

// GetPost обрабатывает GET /posts/:id.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPostView(*post, viewerID(c)))
}

// viewerID - пользователь необязательной сессии, пустая строка для гостя.
func viewerID(c *gin.Context) string {
	if actor, ok := middleware.ActorFrom(c); ok {
		return actor.UserID
	}
	return ""
}

// CreatePost обрабатывает POST /posts.
// Принимает multipart/form-data с файлами image и video или JSON без файлов.
func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var (
		in      service.CreatePostInput
		closers []io.Closer
	)
	defer func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}()

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCreatePostBody)

		in.Content = c.PostForm("content")
		in.CelebrityName = c.PostForm("celebrity_name")

		for _, field := range []string{"image", "video"} {
			upload, closer, err := formUpload(c, field)
			if err != nil {
				common.RespondAppError(c, err)
				return
			}
			if upload == nil {
				continue
			}
			closers = append(closers, closer)
			if field == "image" {
				in.Image = upload
			} else {
				in.Video = upload
			}
		}
	} else {
		var req dto.CreatePostRequest
		if err := common.BindJSON(c, &req); err != nil {
			common.RespondAppError(c, err)
			return
		}
		in.Content = req.Content
		in.CelebrityName = req.CelebrityName
	}

	post, err := h.posts.CreatePost(c.Request.Context(), actor, in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdateReaction обрабатывает PUT /posts/:id/reactions.
func (h *PostHandler) UpdateReaction(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.ReactionRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	post, err := h.posts.UpdatePostReaction(c.Request.Context(), actor, c.Param("id"), models.ReactionKind(req.Reaction))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Reload обрабатывает POST /posts/reload: лента перечитывается из хранилища.
func (h *PostHandler) Reload(c *gin.Context) {
	if err := h.posts.Reload(c.Request.Context()); err != nil {
		common.RespondAppError(c, err)
		return
	}
	h.ListPosts(c)
}

// formUpload открывает файл из поля формы. Отсутствующее поле - не ошибка.
func formUpload(c *gin.Context, field string) (*service.Upload, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperror.New(apperror.ErrCodeValidation, "запрос слишком большой")
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл "+field)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось открыть файл "+field)
	}
	return &service.Upload{Size: header.Size, Reader: file}, file, nil
}
