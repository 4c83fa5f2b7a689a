package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
)

// MediaKind - тип вложения поста.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

var (
	// ErrTooLarge - файл больше лимита.
	ErrTooLarge = errors.New("storage: размер файла превышает лимит")
	// ErrUnsupportedType - содержимое не совпадает с заявленным типом.
	ErrUnsupportedType = errors.New("storage: неподдерживаемый тип файла")
	ErrEmptyFile       = errors.New("storage: файл пустой")
)

// MediaStorage отвечает за файловое хранилище вложений постов.
type MediaStorage struct {
	rootPath  string
	urlPrefix string
}

// NewMediaStorage создаёт файловое хранилище. Файлы отдаются по urlPrefix.
func NewMediaStorage(rootPath, urlPrefix string) (*MediaStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &MediaStorage{
		rootPath:  rootPath,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Root возвращает корневой каталог; роутер раздаёт его под urlPrefix.
func (s *MediaStorage) Root() string {
	return s.rootPath
}

// Save проверяет тип по сигнатуре, сохраняет файл и возвращает публичный URL.
func (s *MediaStorage) Save(ctx context.Context, ownerID string, kind MediaKind, maxBytes int64, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(262)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("storage: чтение файла: %w", err)
	}
	if len(head) == 0 {
		return "", ErrEmptyFile
	}

	detected, err := filetype.Match(head)
	if err != nil || detected == filetype.Unknown {
		return "", ErrUnsupportedType
	}
	switch kind {
	case MediaImage:
		if !filetype.IsImage(head) {
			return "", ErrUnsupportedType
		}
	case MediaVideo:
		if !filetype.IsVideo(head) {
			return "", ErrUnsupportedType
		}
	default:
		return "", ErrUnsupportedType
	}

	dirName := sanitizeName(ownerID)
	fileName := ids.New(string(kind)) + "." + detected.Extension

	ownerDir := filepath.Join(s.rootPath, dirName)
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(ownerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: br, N: maxBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > maxBytes {
		_ = os.Remove(tempPath)
		return "", ErrTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return s.urlPrefix + "/" + path.Join(dirName, fileName), nil
}

// Delete удаляет файл по публичному URL.
func (s *MediaStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relative := strings.TrimPrefix(url, s.urlPrefix+"/")
	if relative == url || strings.Contains(relative, "..") {
		return fmt.Errorf("storage: чужой путь %q", url)
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(relative))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeName удаляет потенциально опасные символы.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "unknown"
	}
	return name
}
