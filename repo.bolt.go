package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var errBoltBucketMissing = errors.New("bolt: archive bucket does not exist")

// ArchiveStorage is a book storage owning its underlying database file.
type ArchiveStorage interface {
	BookStorage
	Close() error
}

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *ArchiveConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *ArchiveConfig) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookStorage provides an instance of bolt-based book storage.
func NewBoltBookStorage(logger *zap.Logger, config *ArchiveConfig, client *bolt.DB) ArchiveStorage {
	return &boltBookStorage{
		logger: logger,
		client: client,
		config: config,
	}
}

// Close shuts down the bolt-based book storage and releases the file lock.
func (bs *boltBookStorage) Close() error {
	return bs.client.Close()
}

func (bs *boltBookStorage) bucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(bs.config.BucketName))
	if b == nil {
		return nil, errBoltBucketMissing
	}
	return b, nil
}

func (bs *boltBookStorage) put(b *bolt.Bucket, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return b.Put([]byte(book.ISBN), bookBytes)
}

// ListAll retrieves a list of all books stored in the bolt database, ordered by ISBN.
func (bs *boltBookStorage) ListAll(_ context.Context) ([]Book, error) {
	books := []Book{}
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var book Book
			if err := json.Unmarshal(v, &book); err != nil {
				return err
			}
			books = append(books, book)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// GetByISBN retrieves a book record based on its ISBN from boltdb store.
func (bs *boltBookStorage) GetByISBN(_ context.Context, isbn string) (Book, error) {
	var book Book
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx)
		if err != nil {
			return err
		}
		result := b.Get([]byte(isbn))
		if result == nil {
			return ErrBookNotFound
		}
		return json.Unmarshal(result, &book)
	})
	return book, err
}

// Create inserts a new book record into boltdb store.
func (bs *boltBookStorage) Create(_ context.Context, book Book) (Book, error) {
	err := bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(book.ISBN)) != nil {
			return ErrBookAlreadyExists
		}
		return bs.put(b, book)
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

// UpdateByISBN replaces an existing book record.
func (bs *boltBookStorage) UpdateByISBN(_ context.Context, isbn string, book Book) (Book, error) {
	book.ISBN = isbn
	err := bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(isbn)) == nil {
			return ErrBookNotFound
		}
		return bs.put(b, book)
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

// DeleteByISBN removes a book record based on its ISBN from boltdb store.
func (bs *boltBookStorage) DeleteByISBN(_ context.Context, isbn string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bs.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get([]byte(isbn)) == nil {
			return ErrBookNotFound
		}
		return b.Delete([]byte(isbn))
	})
}

// Ping ensures the archive bucket is still readable.
func (bs *boltBookStorage) Ping(_ context.Context) error {
	return bs.client.View(func(tx *bolt.Tx) error {
		_, err := bs.bucket(tx)
		return err
	})
}
