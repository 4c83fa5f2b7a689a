package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

const postColumns = `id, content, celebrity_name, author_id, author_email, image_url, video_url,
	likes, dislikes, funny, deleted_at, deleted_by, delete_reason, created_at`

// postRow - строка таблицы posts со счётчиками реакций в отдельных колонках.
type postRow struct {
	models.Post
	Likes    int `db:"likes"`
	Dislikes int `db:"dislikes"`
	Funny    int `db:"funny"`
}

func (r postRow) toModel() models.Post {
	post := r.Post
	post.Reactions = models.Reactions{Likes: r.Likes, Dislikes: r.Dislikes, Funny: r.Funny}
	post.UserReactions = map[string]models.ReactionKind{}
	return post
}

type reactionRow struct {
	PostID string              `db:"post_id"`
	UserID string              `db:"user_id"`
	Kind   models.ReactionKind `db:"kind"`
}

// PostRepository работает с таблицами posts и post_reactions.
type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, content, celebrity_name, author_id, author_email, image_url, video_url, likes, dislikes, funny, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, post.ID, post.Content, post.CelebrityName, post.AuthorID, post.AuthorEmail, post.ImageURL, post.VideoURL,
		post.Reactions.Likes, post.Reactions.Dislikes, post.Reactions.Funny, post.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("post repository: create %s: %w", post.ID, common.ErrAlreadyExists)
		}
		return fmt.Errorf("post repository: create %w", err)
	}
	return nil
}

// List возвращает неудалённые посты, новые первыми, вместе с реакциями пользователей.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	query := `SELECT ` + postColumns + ` FROM posts WHERE deleted_at IS NULL ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("post repository: list %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	index := make(map[string]int, len(rows))
	ids := make([]string, 0, len(rows))
	for i, row := range rows {
		posts = append(posts, row.toModel())
		index[row.ID] = i
		ids = append(ids, row.ID)
	}
	if len(ids) == 0 {
		return posts, nil
	}

	var reactions []reactionRow
	if err := r.db.SelectContext(ctx, &reactions, `
		SELECT post_id, user_id, kind FROM post_reactions WHERE post_id = ANY($1)
	`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("post repository: list reactions %w", err)
	}
	for _, re := range reactions {
		if i, ok := index[re.PostID]; ok {
			posts[i].UserReactions[re.UserID] = re.Kind
		}
	}

	return posts, nil
}

// GetByID возвращает пост, в том числе удалённый.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	row, err := common.GetByField[postRow](ctx, r.db, "posts", "id", id)
	if err != nil {
		return nil, fmt.Errorf("post repository: get by id %w", err)
	}
	post := row.toModel()

	var reactions []reactionRow
	if err := r.db.SelectContext(ctx, &reactions, `
		SELECT post_id, user_id, kind FROM post_reactions WHERE post_id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("post repository: get reactions %w", err)
	}
	for _, re := range reactions {
		post.UserReactions[re.UserID] = re.Kind
	}
	return &post, nil
}

// SaveReaction заменяет реакцию пользователя и обновляет счётчики в одной транзакции.
// Пустой next снимает реакцию.
func (r *PostRepository) SaveReaction(ctx context.Context, postID, userID string, next models.ReactionKind) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Блокируем строку поста, чтобы параллельные реакции не разошлись со счётчиками
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT TRUE FROM posts WHERE id = $1 FOR UPDATE`, postID); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("post repository: save reaction %s: %w", postID, common.ErrNotFound)
			}
			return fmt.Errorf("post repository: lock post %w", err)
		}

		var previous []models.ReactionKind
		if err := tx.SelectContext(ctx, &previous, `
			DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2 RETURNING kind
		`, postID, userID); err != nil {
			return fmt.Errorf("post repository: delete reaction %w", err)
		}
		for _, kind := range previous {
			if err := adjustCounter(ctx, tx, postID, kind, -1); err != nil {
				return err
			}
		}

		if next == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO post_reactions (post_id, user_id, kind) VALUES ($1, $2, $3)
		`, postID, userID, next); err != nil {
			return fmt.Errorf("post repository: insert reaction %w", err)
		}
		return adjustCounter(ctx, tx, postID, next, 1)
	})
}

func adjustCounter(ctx context.Context, tx *sqlx.Tx, postID string, kind models.ReactionKind, delta int) error {
	var column string
	switch kind {
	case models.ReactionLike:
		column = "likes"
	case models.ReactionDislike:
		column = "dislikes"
	case models.ReactionFunny:
		column = "funny"
	default:
		return fmt.Errorf("post repository: unknown reaction %q: %w", kind, common.ErrInvalidInput)
	}
	query := fmt.Sprintf(`UPDATE posts SET %[1]s = GREATEST(%[1]s + $2, 0) WHERE id = $1`, column)
	if _, err := tx.ExecContext(ctx, query, postID, delta); err != nil {
		return fmt.Errorf("post repository: update %s %w", column, err)
	}
	return nil
}

func (r *PostRepository) SoftDelete(ctx context.Context, postID, adminID, reason string, at time.Time) error {
	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = $2, deleted_by = $3, delete_reason = $4
		WHERE id = $1 AND deleted_at IS NULL
	`, postID, at, adminID, reasonArg)
	if err != nil {
		return fmt.Errorf("post repository: soft delete %w", err)
	}
	return common.ExpectAffected(res, "post repository: soft delete "+postID)
}
