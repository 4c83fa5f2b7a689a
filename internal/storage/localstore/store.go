// Package localstore хранит данные в одном файле bbolt.
// Каждая коллекция лежит целиком под своим ключом в виде JSON и
// перезаписывается полностью внутри одной транзакции.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Ключи коллекций.
const (
	KeyPosts        = "roastblame_posts"
	KeyUsers        = "roastblame_users"
	KeySessions     = "roastblame_sessions"
	KeyReports      = "roastblame_reports"
	KeyTransactions = "roastblame_crypto_transactions"
	KeyWallets      = "roastblame_wallets"
	KeyNFTs         = "roastblame_nfts"
	KeyAdminLogs    = "roastblame_admin_logs"
	KeySettings     = "roastblame_settings"
)

var bucketName = []byte("roastblame")

// Store - обёртка над файлом bbolt.
type Store struct {
	db *bbolt.DB
}

// Open открывает (или создаёт) файл хранилища.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("localstore: создание каталога %s: %w", dir, err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("localstore: открытие %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: создание bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает файл.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет, что файл открыт.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return errors.New("localstore: bucket не найден")
		}
		return nil
	})
}

func (s *Store) view(fn func(b *bbolt.Bucket) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(bucketName))
	})
}

func (s *Store) update(fn func(b *bbolt.Bucket) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(bucketName))
	})
}

// load читает коллекцию. Отсутствующий ключ оставляет out нулевым,
// неизвестные поля в JSON игнорируются.
func load[T any](b *bbolt.Bucket, key string, out *T) error {
	raw := b.Get([]byte(key))
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("localstore: разбор %s: %w", key, err)
	}
	return nil
}

func save[T any](b *bbolt.Bucket, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: сериализация %s: %w", key, err)
	}
	if err := b.Put([]byte(key), raw); err != nil {
		return fmt.Errorf("localstore: запись %s: %w", key, err)
	}
	return nil
}

// mutate выполняет read-modify-write коллекции в одной транзакции.
func mutate[T any](s *Store, key string, fn func(items *T) error) error {
	return s.update(func(b *bbolt.Bucket) error {
		var items T
		if err := load(b, key, &items); err != nil {
			return err
		}
		if err := fn(&items); err != nil {
			return err
		}
		return save(b, key, items)
	})
}

// read читает коллекцию целиком.
func read[T any](s *Store, key string) (T, error) {
	var items T
	err := s.view(func(b *bbolt.Bucket) error {
		return load(b, key, &items)
	})
	return items, err
}
