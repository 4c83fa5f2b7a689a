package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// SeedService наполняет пустое хранилище демонстрационными постами.
type SeedService struct {
	postRepo PostRepository
	now      func() time.Time
}

// NewSeedService создаёт новый сервис для генерации данных.
func NewSeedService(postRepo PostRepository) *SeedService {
	return &SeedService{postRepo: postRepo, now: time.Now}
}

type demoPost struct {
	content     string
	celebrity   string
	authorID    string
	authorEmail string
	age         time.Duration
}

var demoPosts = []demoPost{
	{
		content:     "Just saw Elon Musk's latest tweet about buying the moon. At this point, I wouldn't be surprised if he actually does it and then complains about the lack of WiFi up there! 🚀",
		celebrity:   "Elon Musk",
		authorID:    "user_demo1",
		authorEmail: "comedy_fan@example.com",
		age:         30 * time.Minute,
	},
	{
		content:   "Taylor Swift probably has a song about her morning coffee by now. 'We Are Never Ever Getting Back Together (With Decaf)' coming to streaming platforms soon! ☕",
		celebrity: "Taylor Swift",
		authorID:  "anon_demo1",
		age:       2 * time.Hour,
	},
	{
		content:     "Gordon Ramsay would probably find a way to criticize how I'm reading this post right now. 'This reading technique is RAW! Absolutely RAW!' 👨‍🍳",
		celebrity:   "Gordon Ramsay",
		authorID:    "user_demo2",
		authorEmail: "foodie_joker@example.com",
		age:         4 * time.Hour,
	},
}

// SeedDemoPosts добавляет демо-посты, только если постов ещё нет.
// Реакции начинаются с нуля: счётчики без записей о пользователях
// сломали бы соответствие счётчиков и user_reactions.
func (s *SeedService) SeedDemoPosts(ctx context.Context) (int, error) {
	existing, err := s.postRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed service: failed to list posts: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := s.now()
	// Создаём от старых к новым, чтобы самый свежий оказался первым
	created := 0
	for i := len(demoPosts) - 1; i >= 0; i-- {
		d := demoPosts[i]
		post := &models.Post{
			ID:            ids.New(models.PrefixPost),
			Content:       d.content,
			CelebrityName: d.celebrity,
			AuthorID:      d.authorID,
			CreatedAt:     now.Add(-d.age),
			UserReactions: map[string]models.ReactionKind{},
		}
		if d.authorEmail != "" {
			email := d.authorEmail
			post.AuthorEmail = &email
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return created, fmt.Errorf("seed service: failed to create post: %w", err)
		}
		created++
	}

	logger.L().WithField("count", created).Info("seed service: добавлены демо-посты")
	return created, nil
}
