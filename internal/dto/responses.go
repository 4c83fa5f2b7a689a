package dto

import (
	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// AuthResponse возвращается всеми ручками входа.
type AuthResponse struct {
	User         *models.User `json:"user"`
	Role         string       `json:"role"`
	IsAdmin      bool         `json:"is_admin"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// MeResponse описывает текущую сессию.
type MeResponse struct {
	User    *models.User `json:"user"`
	Role    string       `json:"role"`
	IsAdmin bool         `json:"is_admin"`
}

// PostView - пост в выдаче ленты. MyReaction заполняется, если запрос
// пришёл с валидным токеном и пользователь уже реагировал на пост.
type PostView struct {
	models.Post
	MyReaction models.ReactionKind `json:"my_reaction,omitempty"`
}

// NewPostView строит представление поста для пользователя userID (может быть пустым).
func NewPostView(post models.Post, userID string) PostView {
	view := PostView{Post: post}
	if userID != "" {
		view.MyReaction = post.UserReactions[userID]
	}
	return view
}

// PaginatedPostsResponse represents paginated feed
type PaginatedPostsResponse struct {
	Data       []PostView `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPagination заполняет метаданные страницы.
func NewPagination(total, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
