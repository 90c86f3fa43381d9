package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// popRetryDelay is the pause after a failed pop before the next attempt.
const popRetryDelay = 500 * time.Millisecond

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type archiveConsumer struct {
	logger *zap.Logger
	queue  Queuer
	repo   BookStorage
}

// NewArchiveConsumer provides a consumer which mirrors queued book
// changes into the archive storage.
func NewArchiveConsumer(logger *zap.Logger, q Queuer, repo BookStorage) Consumer {
	return &archiveConsumer{logger, q, repo}
}

// Consume applies events until the context is done. Events are applied
// as upserts so a replayed or out of order event never stops the loop.
func (ac *archiveConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, book, err := ac.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			ac.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			ac.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popRetryDelay):
			}
			continue
		}

		if err = ac.apply(ctx, qid, book); err != nil {
			ac.logger.Error("consumer: failed to apply event",
				zap.String("qid", qid),
				zap.String("book.isbn", book.ISBN),
				zap.Error(err),
			)
		}
	}
}

func (ac *archiveConsumer) apply(ctx context.Context, qid string, book Book) error {
	var err error
	switch qid {
	case CreateQueue:
		_, err = ac.repo.Create(ctx, book)
		if errors.Is(err, ErrBookAlreadyExists) {
			_, err = ac.repo.UpdateByISBN(ctx, book.ISBN, book)
		}
	case UpdateQueue:
		_, err = ac.repo.UpdateByISBN(ctx, book.ISBN, book)
		if errors.Is(err, ErrBookNotFound) {
			_, err = ac.repo.Create(ctx, book)
		}
	case DeleteQueue:
		err = ac.repo.DeleteByISBN(ctx, book.ISBN)
		if errors.Is(err, ErrBookNotFound) {
			err = nil
		}
	default:
		ac.logger.Warn("consumer: received book on unknow queue id", zap.String("qid", qid), zap.Any("book", book))
	}
	return err
}
