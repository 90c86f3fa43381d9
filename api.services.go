package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	ListAll(ctx context.Context) ([]Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	UpdateByISBN(ctx context.Context, isbn string, book Book) (Book, error)
	DeleteByISBN(ctx context.Context, isbn string) error
	Ping(ctx context.Context) error
}

type BookService struct {
	logger  *zap.Logger
	storage BookStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, storage BookStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		storage: storage,
		queue:   queue,
	}
}

// publish notifies the change feed. A failed push never fails the write.
func (bs *BookService) publish(ctx context.Context, qid string, book Book) {
	if err := bs.queue.Push(ctx, qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue",
			zap.String("qid", qid),
			zap.String("book.isbn", book.ISBN),
			zap.Error(err),
		)
	}
}

func (bs *BookService) ListAll(ctx context.Context) ([]Book, error) {
	return bs.storage.ListAll(ctx)
}

func (bs *BookService) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return bs.storage.GetByISBN(ctx, isbn)
}

func (bs *BookService) Create(ctx context.Context, book Book) (Book, error) {
	created, err := bs.storage.Create(ctx, book)
	if err != nil {
		return created, err
	}
	bs.publish(ctx, CreateQueue, created)
	return created, nil
}

func (bs *BookService) UpdateByISBN(ctx context.Context, isbn string, book Book) (Book, error) {
	updated, err := bs.storage.UpdateByISBN(ctx, isbn, book)
	if err != nil {
		return updated, err
	}
	bs.publish(ctx, UpdateQueue, updated)
	return updated, nil
}

func (bs *BookService) DeleteByISBN(ctx context.Context, isbn string) error {
	if err := bs.storage.DeleteByISBN(ctx, isbn); err != nil {
		return err
	}
	bs.publish(ctx, DeleteQueue, Book{ISBN: isbn})
	return nil
}

func (bs *BookService) Ping(ctx context.Context) error {
	return bs.storage.Ping(ctx)
}
