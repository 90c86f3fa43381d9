package main

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookAlreadyExists = errors.New("book already exists")
)

// Book represents a book entity. The ISBN is its unique key.
type Book struct {
	ISBN      string `json:"isbn"`
	AmazonURL string `json:"amazon_url"`
	Author    string `json:"author"`
	Language  string `json:"language"`
	Pages     int    `json:"pages"`
	Publisher string `json:"publisher"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
}

// ValidationError reports every violation found in a book payload.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid book payload: " + strings.Join(e.Violations, "; ")
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	ListAll(ctx context.Context) ([]Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	UpdateByISBN(ctx context.Context, isbn string, book Book) (Book, error)
	DeleteByISBN(ctx context.Context, isbn string) error
	Ping(ctx context.Context) error
}
