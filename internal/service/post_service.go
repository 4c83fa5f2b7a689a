package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/events"
	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/metrics"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/storage"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
)

// PostRepository - хранилище постов.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	SaveReaction(ctx context.Context, postID, userID string, next models.ReactionKind) error
	SoftDelete(ctx context.Context, postID, adminID, reason string, at time.Time) error
}

// UserReader нужен сервисам, которые проверяют статус пользователя.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AdminLogWriter пишет журнал действий администраторов.
type AdminLogWriter interface {
	AppendLog(ctx context.Context, entry *models.AdminLog) error
}

// MediaStorage сохраняет вложения постов.
type MediaStorage interface {
	Save(ctx context.Context, ownerID string, kind storage.MediaKind, maxBytes int64, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Upload - загружаемый файл. Size берётся из заголовка multipart.
type Upload struct {
	Size   int64
	Reader io.Reader
}

// CreatePostInput - данные нового поста.
type CreatePostInput struct {
	Content       string
	CelebrityName string
	Image         *Upload
	Video         *Upload
}

// PostService держит ленту в памяти и синхронизирует её с хранилищем.
// Все изменения ленты сериализуются мьютексом.
type PostService struct {
	repo   PostRepository
	users  UserReader
	logs   AdminLogWriter
	media  MediaStorage
	events EventPublisher
	now    func() time.Time

	mu     sync.RWMutex
	feed   []models.Post
	loaded bool
}

// NewPostService создаёт сервис постов. media и events могут быть nil.
func NewPostService(repo PostRepository, users UserReader, logs AdminLogWriter, media MediaStorage, events EventPublisher) *PostService {
	return &PostService{
		repo:   repo,
		users:  users,
		logs:   logs,
		media:  media,
		events: events,
		now:    time.Now,
	}
}

// CreatePost публикует роаст от имени текущего пользователя.
func (s *PostService) CreatePost(ctx context.Context, actor models.Actor, in CreatePostInput) (*models.Post, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}

	content := strings.TrimSpace(in.Content)
	celebrity := strings.TrimSpace(in.CelebrityName)
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateCelebrityName(celebrity); err != nil {
		return nil, apperror.Validation(err)
	}
	if in.Image != nil && in.Image.Size > validation.MaxImageSize {
		return nil, apperror.New(apperror.ErrCodeValidation, "изображение больше 5 МБ")
	}
	if in.Video != nil && in.Video.Size > validation.MaxVideoSize {
		return nil, apperror.New(apperror.ErrCodeValidation, "видео больше 10 МБ")
	}
	if (in.Image != nil || in.Video != nil) && s.media == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "загрузка файлов отключена")
	}

	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storageError(err, apperror.ErrUnauthorized)
	}
	if author.IsBanned() {
		return nil, apperror.ErrUserBanned
	}

	post := models.Post{
		ID:            ids.New(models.PrefixPost),
		Content:       content,
		CelebrityName: celebrity,
		AuthorID:      author.ID,
		CreatedAt:     s.now(),
		UserReactions: map[string]models.ReactionKind{},
	}
	if !author.IsAnonymous && author.Email != nil {
		email := *author.Email
		post.AuthorEmail = &email
	}

	var saved []string
	cleanup := func() {
		for _, url := range saved {
			if err := s.media.Delete(context.Background(), url); err != nil {
				logger.L().WithError(err).WithField("url", url).Warn("post service: не удалось удалить файл")
			}
		}
	}

	if in.Image != nil {
		url, err := s.saveMedia(ctx, author.ID, storage.MediaImage, validation.MaxImageSize, in.Image)
		if err != nil {
			return nil, err
		}
		saved = append(saved, url)
		post.ImageURL = &url
	}
	if in.Video != nil {
		url, err := s.saveMedia(ctx, author.ID, storage.MediaVideo, validation.MaxVideoSize, in.Video)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, url)
		post.VideoURL = &url
	}

	if err := s.ensureLoaded(ctx); err != nil {
		cleanup()
		return nil, err
	}

	s.mu.Lock()
	if err := s.repo.Create(ctx, &post); err != nil {
		s.mu.Unlock()
		cleanup()
		return nil, storageError(err, nil)
	}
	s.feed = append([]models.Post{post.Clone()}, s.feed...)
	s.mu.Unlock()

	metrics.PostsCreated.Inc()
	s.publish(ctx, events.TopicPostCreated, post)

	logger.L().WithFields(map[string]interface{}{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	}).Info("post service: опубликован пост")

	return &post, nil
}

// ListPosts возвращает страницу ленты и общее число постов.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.feed)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []models.Post{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]models.Post, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, s.feed[i].Clone())
	}
	return page, total, nil
}

// GetPost возвращает пост из ленты.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperror.ErrPostNotFound
	}
	post := s.feed[idx].Clone()
	return &post, nil
}

// UpdatePostReaction переключает реакцию пользователя. Лента обновляется
// сразу, затем изменение записывается в хранилище. При ошибке записи
// лента перечитывается из хранилища.
func (s *PostService) UpdatePostReaction(ctx context.Context, actor models.Actor, postID string, kind models.ReactionKind) (*models.Post, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "реакция должна быть like, dislike или funny")
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx := s.indexOf(postID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperror.ErrPostNotFound
	}

	snapshot := s.feed[idx].Clone()
	change := s.feed[idx].ToggleReaction(actor.UserID, kind)

	if err := s.repo.SaveReaction(ctx, postID, actor.UserID, change.Next); err != nil {
		log := logger.L().WithFields(map[string]interface{}{
			"post_id": postID,
			"user_id": actor.UserID,
		}).WithError(err)
		log.Warn("post service: запись реакции не удалась, перечитываем ленту")

		if reloadErr := s.reloadLocked(ctx); reloadErr != nil {
			s.feed[idx] = snapshot
			log.WithField("reload_error", reloadErr.Error()).Error("post service: не удалось перечитать ленту")
		}
		s.mu.Unlock()
		metrics.ReactionUpdates.WithLabelValues("rollback").Inc()
		return nil, storageError(err, apperror.ErrPostNotFound)
	}

	post := s.feed[idx].Clone()
	s.mu.Unlock()

	metrics.ReactionUpdates.WithLabelValues("ok").Inc()
	s.publish(ctx, events.TopicPostReactionUpdated, events.ReactionUpdated{
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		UserID:    actor.UserID,
		Previous:  change.Previous,
		Next:      change.Next,
		Reactions: post.Reactions,
	})

	return &post, nil
}

// DeletePost скрывает пост. Доступно только администраторам.
func (s *PostService) DeletePost(ctx context.Context, actor models.Actor, postID, reason string) error {
	if !actor.IsAdmin() {
		return apperror.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина удаления", reason, 0, validation.MaxBanReasonLength); err != nil {
		return apperror.Validation(err)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.repo.SoftDelete(ctx, postID, actor.UserID, reason, s.now()); err != nil {
		s.mu.Unlock()
		return storageError(err, apperror.ErrPostNotFound)
	}
	if idx := s.indexOf(postID); idx >= 0 {
		s.feed = append(s.feed[:idx], s.feed[idx+1:]...)
	}
	s.mu.Unlock()

	writeAdminLog(ctx, s.logs, actor.UserID, models.AdminActionDeletePost, postID, reason, s.now())
	s.publish(ctx, events.TopicPostDeleted, events.PostDeleted{
		PostID:  postID,
		AdminID: actor.UserID,
		Reason:  reason,
	})
	return nil
}

// Reload сбрасывает ленту и читает её заново.
func (s *PostService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

// Exists проверяет, что пост есть в ленте.
func (s *PostService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetPost(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperror.ErrPostNotFound) {
		return false, nil
	}
	return false, err
}

func (s *PostService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	return s.reloadLocked(ctx)
}

func (s *PostService) reloadLocked(ctx context.Context) error {
	posts, err := s.repo.List(ctx)
	if err != nil {
		s.loaded = false
		return storageError(err, nil)
	}
	for i := range posts {
		if posts[i].UserReactions == nil {
			posts[i].UserReactions = map[string]models.ReactionKind{}
		}
	}
	s.feed = posts
	s.loaded = true
	return nil
}

func (s *PostService) indexOf(id string) int {
	for i := range s.feed {
		if s.feed[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PostService) saveMedia(ctx context.Context, ownerID string, kind storage.MediaKind, limit int64, up *Upload) (string, error) {
	url, err := s.media.Save(ctx, ownerID, kind, limit, up.Reader)
	if err == nil {
		return url, nil
	}
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, "файл превышает допустимый размер")
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmptyFile):
		if kind == storage.MediaVideo {
			return "", apperror.Wrap(err, apperror.ErrCodeValidation, "файл должен быть видео")
		}
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, "файл должен быть изображением")
	}
	return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
}

func (s *PostService) publish(ctx context.Context, topic string, payload interface{}) {
	publishEvent(ctx, s.events, topic, payload)
}

// publishEvent отправляет событие, ошибки только логируются.
func publishEvent(ctx context.Context, pub EventPublisher, topic string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, payload); err != nil {
		logger.L().WithError(err).WithField("topic", topic).Warn("не удалось опубликовать событие")
	}
}

// writeAdminLog добавляет запись в журнал. Ошибка записи не отменяет действие.
func writeAdminLog(ctx context.Context, logs AdminLogWriter, adminID, action, targetID, reason string, at time.Time) {
	if logs == nil {
		return
	}
	entry := &models.AdminLog{
		ID:        ids.New(models.PrefixAdminLog),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		CreatedAt: at,
	}
	if reason != "" {
		entry.Reason = &reason
	}
	if err := logs.AppendLog(ctx, entry); err != nil {
		logger.L().WithError(err).WithFields(map[string]interface{}{
			"admin_id": adminID,
			"action":   action,
		}).Error("не удалось записать действие администратора")
	}
	metrics.ModerationActions.WithLabelValues(action).Inc()
}
