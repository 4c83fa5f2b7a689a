package models

import (
	"time"
)

// ReactionKind - тип реакции на пост.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
	ReactionFunny   ReactionKind = "funny"
)

// Valid сообщает, является ли значение допустимой реакцией.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionDislike, ReactionFunny:
		return true
	}
	return false
}

// Reactions хранит счётчики реакций поста.
type Reactions struct {
	Likes    int `db:"likes" json:"likes"`
	Dislikes int `db:"dislikes" json:"dislikes"`
	Funny    int `db:"funny" json:"funny"`
}

// Total возвращает сумму всех счётчиков.
func (r Reactions) Total() int {
	return r.Likes + r.Dislikes + r.Funny
}

func (r *Reactions) add(kind ReactionKind, delta int) {
	var counter *int
	switch kind {
	case ReactionLike:
		counter = &r.Likes
	case ReactionDislike:
		counter = &r.Dislikes
	case ReactionFunny:
		counter = &r.Funny
	default:
		return
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
}

// Post - роаст о знаменитости.
type Post struct {
	ID            string                  `db:"id" json:"id"`
	Content       string                  `db:"content" json:"content"`
	CelebrityName string                  `db:"celebrity_name" json:"celebrity_name"`
	AuthorID      string                  `db:"author_id" json:"author_id"`
	AuthorEmail   *string                 `db:"author_email" json:"author_email,omitempty"`
	ImageURL      *string                 `db:"image_url" json:"image_url,omitempty"`
	VideoURL      *string                 `db:"video_url" json:"video_url,omitempty"`
	CreatedAt     time.Time               `db:"created_at" json:"created_at"`
	Reactions     Reactions               `db:"-" json:"reactions"`
	UserReactions map[string]ReactionKind `db:"-" json:"user_reactions"`
	DeletedAt     *time.Time              `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy     *string                 `db:"deleted_by" json:"deleted_by,omitempty"`
	DeleteReason  *string                 `db:"delete_reason" json:"delete_reason,omitempty"`
}

// IsDeleted сообщает, скрыт ли пост модератором.
func (p *Post) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Clone возвращает глубокую копию поста.
func (p *Post) Clone() Post {
	cp := *p
	cp.UserReactions = make(map[string]ReactionKind, len(p.UserReactions))
	for uid, kind := range p.UserReactions {
		cp.UserReactions[uid] = kind
	}
	return cp
}

// ReactionChange описывает переход реакции одного пользователя.
// Пустое значение означает отсутствие реакции.
type ReactionChange struct {
	PostID   string       `json:"post_id"`
	UserID   string       `json:"user_id"`
	Previous ReactionKind `json:"previous,omitempty"`
	Next     ReactionKind `json:"next,omitempty"`
}

// ToggleReaction переключает реакцию пользователя: повторный выбор того же
// типа снимает реакцию, другой тип заменяет предыдущий.
func (p *Post) ToggleReaction(userID string, kind ReactionKind) ReactionChange {
	change := ReactionChange{
		PostID:   p.ID,
		UserID:   userID,
		Previous: p.UserReactions[userID],
	}
	if change.Previous != kind {
		change.Next = kind
	}
	p.SetUserReaction(userID, change.Next)
	return change
}

// SetUserReaction выставляет реакцию пользователя, снимая текущую.
// Инвариант: сумма счётчиков равна числу записей в UserReactions.
func (p *Post) SetUserReaction(userID string, next ReactionKind) {
	if p.UserReactions == nil {
		p.UserReactions = make(map[string]ReactionKind)
	}
	if current, ok := p.UserReactions[userID]; ok {
		p.Reactions.add(current, -1)
		delete(p.UserReactions, userID)
	}
	if next == "" {
		return
	}
	p.UserReactions[userID] = next
	p.Reactions.add(next, 1)
}
