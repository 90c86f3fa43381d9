package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	ListAllFunc      func(ctx context.Context) ([]Book, error)
	GetByISBNFunc    func(ctx context.Context, isbn string) (Book, error)
	CreateFunc       func(ctx context.Context, book Book) (Book, error)
	UpdateByISBNFunc func(ctx context.Context, isbn string, book Book) (Book, error)
	DeleteByISBNFunc func(ctx context.Context, isbn string) error
	PingFunc         func(ctx context.Context) error
}

// ListAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) ListAll(ctx context.Context) ([]Book, error) {
	return m.ListAllFunc(ctx)
}

// GetByISBN mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return m.GetByISBNFunc(ctx, isbn)
}

// Create mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Create(ctx context.Context, book Book) (Book, error) {
	return m.CreateFunc(ctx, book)
}

// UpdateByISBN mocks the behavior of replacing a book by the repository.
func (m *MockBookStorage) UpdateByISBN(ctx context.Context, isbn string, book Book) (Book, error) {
	return m.UpdateByISBNFunc(ctx, isbn, book)
}

// DeleteByISBN mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) DeleteByISBN(ctx context.Context, isbn string) error {
	return m.DeleteByISBNFunc(ctx, isbn)
}

// Ping mocks the repository health check.
func (m *MockBookStorage) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// MockQueuer implements a fake Queuer.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Book, error)
}

// Push mocks the behavior of pushing a book change on a queue.
func (mq *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	return mq.PushFunc(ctx, qid, book)
}

// Pop mocks the behavior of dequeuing a book change.
func (mq *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	return mq.PopFunc(ctx, qids...)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// NewTicker satisfies TickerClocker so the mock can drive the logger.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// testBook returns a complete and valid book.
func testBook(isbn string) Book {
	return Book{
		ISBN:      isbn,
		AmazonURL: "https://www.amazon.com/dp/" + isbn,
		Author:    "Jerome Amon",
		Language:  "English",
		Pages:     352,
		Publisher: "Demo Press",
		Title:     "Practical Go Services",
		Year:      2023,
	}
}

// newTestAPIHandler builds an api handler around the given storage
// with predictable clock and ids and a queue dropping all events.
func newTestAPIHandler(storage BookStorage, queue Queuer) *APIHandler {
	if queue == nil {
		queue = NewNopQueue()
	}
	clock := NewMockClocker()
	bs := NewBookService(zap.NewNop(), storage, queue)
	return NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("test-id"), bs, nil)
}
