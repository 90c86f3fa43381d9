package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgUniqueViolation is the SQLSTATE raised on a duplicate primary key.
const pgUniqueViolation = "23505"

const bookColumns = "isbn, amazon_url, author, language, pages, publisher, title, year"

type postgresBookStorage struct {
	logger  *zap.Logger
	pool    *pgxpool.Pool
	timeout time.Duration
}

// GetPostgresPool provides a ready to use connection pool
// once the database answered a ping.
func GetPostgresPool(config *Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.Postgres.ConnectTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, config.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool for %s: %v", RedactDSN(config.Postgres.DSN), err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("test connection to %s failed: %v", RedactDSN(config.Postgres.DSN), err)
	}
	return pool, nil
}

// NewPostgresBookStorage provides an instance of postgres-based book storage.
func NewPostgresBookStorage(logger *zap.Logger, pool *pgxpool.Pool, timeout time.Duration) BookStorage {
	return &postgresBookStorage{
		logger:  logger,
		pool:    pool,
		timeout: timeout,
	}
}

// withConn acquires a single connection for the duration of fn
// and always hands it back to the pool.
func (ps *postgresBookStorage) withConn(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()
	conn, err := ps.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(ctx, conn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(&b.ISBN, &b.AmazonURL, &b.Author, &b.Language, &b.Pages, &b.Publisher, &b.Title, &b.Year)
	return b, err
}

// ListAll retrieves all books ordered by title.
func (ps *postgresBookStorage) ListAll(ctx context.Context) ([]Book, error) {
	books := []Book{}
	err := ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY title, isbn")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			book, err := scanBook(rows)
			if err != nil {
				return err
			}
			books = append(books, book)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// GetByISBN retrieves a book record based on its ISBN.
func (ps *postgresBookStorage) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	var book Book
	err := ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		book, err = scanBook(conn.QueryRow(ctx, "SELECT "+bookColumns+" FROM books WHERE isbn = $1", isbn))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	return book, err
}

// Create inserts a new book record. A duplicate ISBN is reported as ErrBookAlreadyExists.
func (ps *postgresBookStorage) Create(ctx context.Context, book Book) (Book, error) {
	var created Book
	err := ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		created, err = scanBook(conn.QueryRow(ctx,
			"INSERT INTO books ("+bookColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+bookColumns,
			book.ISBN, book.AmazonURL, book.Author, book.Language, book.Pages, book.Publisher, book.Title, book.Year,
		))
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return Book{}, ErrBookAlreadyExists
	}
	return created, err
}

// UpdateByISBN replaces every non-key field of an existing book record.
func (ps *postgresBookStorage) UpdateByISBN(ctx context.Context, isbn string, book Book) (Book, error) {
	var updated Book
	err := ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		var err error
		updated, err = scanBook(conn.QueryRow(ctx, `
			UPDATE books
			SET amazon_url = $1, author = $2, language = $3, pages = $4, publisher = $5, title = $6, year = $7
			WHERE isbn = $8
			RETURNING `+bookColumns,
			book.AmazonURL, book.Author, book.Language, book.Pages, book.Publisher, book.Title, book.Year, isbn,
		))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	return updated, err
}

// DeleteByISBN removes a book record based on its ISBN.
func (ps *postgresBookStorage) DeleteByISBN(ctx context.Context, isbn string) error {
	return ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, "DELETE FROM books WHERE isbn = $1", isbn)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrBookNotFound
		}
		return nil
	})
}

// Ping checks the database is reachable.
func (ps *postgresBookStorage) Ping(ctx context.Context) error {
	return ps.withConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.Ping(ctx)
	})
}

// RedactDSN hides the credentials part of a connection string.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
