package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// PostRepository хранит посты под ключом roastblame_posts, новые первыми.
type PostRepository struct {
	store *Store
}

func NewPostRepository(store *Store) *PostRepository {
	return &PostRepository{store: store}
}

// Create добавляет пост в начало коллекции.
func (r *PostRepository) Create(_ context.Context, post *models.Post) error {
	return mutate(r.store, KeyPosts, func(posts *[]models.Post) error {
		for i := range *posts {
			if (*posts)[i].ID == post.ID {
				return fmt.Errorf("post %s: %w", post.ID, common.ErrAlreadyExists)
			}
		}
		*posts = append([]models.Post{post.Clone()}, *posts...)
		return nil
	})
}

// List возвращает неудалённые посты, новые первыми.
func (r *PostRepository) List(_ context.Context) ([]models.Post, error) {
	posts, err := read[[]models.Post](r.store, KeyPosts)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		if posts[i].IsDeleted() {
			continue
		}
		if posts[i].UserReactions == nil {
			posts[i].UserReactions = map[string]models.ReactionKind{}
		}
		visible = append(visible, posts[i])
	}
	return visible, nil
}

// GetByID возвращает пост, в том числе удалённый.
func (r *PostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	posts, err := read[[]models.Post](r.store, KeyPosts)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			post := posts[i].Clone()
			return &post, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", id, common.ErrNotFound)
}

// SaveReaction выставляет реакцию пользователя и пересчитывает счётчики
// в той же транзакции.
func (r *PostRepository) SaveReaction(_ context.Context, postID, userID string, next models.ReactionKind) error {
	return mutate(r.store, KeyPosts, func(posts *[]models.Post) error {
		for i := range *posts {
			if (*posts)[i].ID == postID {
				(*posts)[i].SetUserReaction(userID, next)
				return nil
			}
		}
		return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	})
}

// SoftDelete помечает пост удалённым.
func (r *PostRepository) SoftDelete(_ context.Context, postID, adminID, reason string, at time.Time) error {
	return mutate(r.store, KeyPosts, func(posts *[]models.Post) error {
		for i := range *posts {
			p := &(*posts)[i]
			if p.ID != postID {
				continue
			}
			if p.IsDeleted() {
				return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
			}
			p.DeletedAt = &at
			p.DeletedBy = &adminID
			if reason != "" {
				p.DeleteReason = &reason
			}
			return nil
		}
		return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	})
}
