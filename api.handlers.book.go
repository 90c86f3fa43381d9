package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := StatusResponse{
		RequestID: requestID,
		Status:    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
		Message:   "Hello. Books store api is available. Enjoy :)",
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Ready reports whether the books database can serve requests.
func (api *APIHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	if err := api.bookService.Ping(r.Context()); err != nil {
		logger.Error("readiness check failed", zap.Error(err))
		if err = WriteErrorResponse(r.Context(), w, NewAPIError(http.StatusServiceUnavailable, "database not ready")); err != nil {
			logger.Error("failed to send error response", zap.Error(err))
		}
		return
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, MessageResponse{Message: "ready"}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// NotFound answers unknown routes with the standard json error body.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError(http.StatusNotFound, "Not Found")
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send not found response", zap.String("request.path", r.URL.Path), zap.Error(err))
		}
	})
}

// MethodNotAllowed answers known routes called with an unsupported method.
func (api *APIHandler) MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError(http.StatusMethodNotAllowed, "Method Not Allowed")
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send method not allowed response", zap.String("request.path", r.URL.Path), zap.Error(err))
		}
	})
}

// bookErrorResponse maps a validation or storage outcome to its api error.
func bookErrorResponse(err error, isbn, fallback string) *APIError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return NewAPIError(http.StatusBadRequest, verr.Violations)
	case errors.Is(err, ErrBookNotFound):
		return NewAPIError(http.StatusNotFound, fmt.Sprintf("there is no book with isbn '%s'", isbn))
	case errors.Is(err, ErrBookAlreadyExists):
		return NewAPIError(http.StatusConflict, fmt.Sprintf("a book with isbn '%s' already exists", isbn))
	default:
		return NewAPIError(http.StatusInternalServerError, fallback)
	}
}

func (api *APIHandler) sendBookError(ctx context.Context, w http.ResponseWriter, err error, isbn, fallback string) {
	logger := api.GetLoggerFromContext(ctx)
	errResp := bookErrorResponse(err, isbn, fallback)
	if errResp.Err.Status == http.StatusInternalServerError {
		logger.Error(fallback, zap.String("book.isbn", isbn), zap.Error(err))
	} else {
		logger.Info(fallback, zap.String("book.isbn", isbn), zap.Int("status", errResp.Err.Status), zap.Error(err))
	}
	if err = WriteErrorResponse(ctx, w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

// GetAllBooks godoc
//
//	@Summary	List all books
//	@Produce	json
//	@Success	200	{object}	BooksResponse
//	@Failure	500	{object}	APIError
//	@Router		/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	books, err := api.bookService.ListAll(r.Context())
	if err != nil {
		api.sendBookError(r.Context(), w, err, "", "failed to get all books")
		return
	}
	logger.Info("success to get all books", zap.Int("books.total", len(books)))
	if err = WriteResponse(r.Context(), w, http.StatusOK, BooksResponse{Books: books}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// GetOneBook godoc
//
//	@Summary	Get a book by its ISBN
//	@Produce	json
//	@Param		isbn	path		string	true	"book isbn"
//	@Success	200		{object}	BookResponse
//	@Failure	404		{object}	APIError
//	@Failure	500		{object}	APIError
//	@Router		/books/{isbn} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	isbn := ps.ByName("isbn")
	book, err := api.bookService.GetByISBN(r.Context(), isbn)
	if err != nil {
		api.sendBookError(r.Context(), w, err, isbn, "failed to get the book")
		return
	}
	logger.Info("success to get book", zap.String("book.isbn", isbn))
	if err = WriteResponse(r.Context(), w, http.StatusOK, BookResponse{Book: book}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// CreateBook godoc
//
//	@Summary	Create a book
//	@Accept		json
//	@Produce	json
//	@Param		book	body		Book	true	"book to create"
//	@Success	201		{object}	BookResponse
//	@Failure	400		{object}	APIError
//	@Failure	409		{object}	APIError
//	@Failure	500		{object}	APIError
//	@Router		/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	payload, err := ReadBookRequestBody(w, r, api.maxBodySize())
	if err != nil {
		api.sendBookError(r.Context(), w, err, "", "failed to create the book")
		return
	}

	book, err := ValidateBookPayload(payload)
	if err != nil {
		api.sendBookError(r.Context(), w, err, "", "failed to create the book")
		return
	}

	created, err := api.bookService.Create(r.Context(), book)
	if err != nil {
		api.sendBookError(r.Context(), w, err, book.ISBN, "failed to create the book")
		return
	}
	logger.Info("success to create book", zap.String("book.isbn", created.ISBN))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, BookResponse{Book: created}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// UpdateBook godoc
//
//	@Summary	Replace a book by its ISBN
//	@Accept		json
//	@Produce	json
//	@Param		isbn	path		string	true	"book isbn"
//	@Param		book	body		Book	true	"full book payload"
//	@Success	200		{object}	BookResponse
//	@Failure	400		{object}	APIError
//	@Failure	404		{object}	APIError
//	@Failure	500		{object}	APIError
//	@Router		/books/{isbn} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	isbn := ps.ByName("isbn")
	payload, err := ReadBookRequestBody(w, r, api.maxBodySize())
	if err != nil {
		api.sendBookError(r.Context(), w, err, isbn, "failed to update the book")
		return
	}

	book, err := ValidateBookPayload(payload)
	if err == nil && book.ISBN != isbn {
		err = &ValidationError{Violations: []string{fmt.Sprintf("isbn: must match the isbn '%s' of the updated book", isbn)}}
	}
	if err != nil {
		api.sendBookError(r.Context(), w, err, isbn, "failed to update the book")
		return
	}

	book, err = api.bookService.UpdateByISBN(r.Context(), isbn, book)
	if err != nil {
		api.sendBookError(r.Context(), w, err, isbn, "failed to update the book")
		return
	}
	logger.Info("success to update book", zap.String("book.isbn", isbn))
	if err = WriteResponse(r.Context(), w, http.StatusOK, BookResponse{Book: book}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}

// DeleteOneBook godoc
//
//	@Summary	Delete a book by its ISBN
//	@Produce	json
//	@Param		isbn	path		string	true	"book isbn"
//	@Success	200		{object}	MessageResponse
//	@Failure	404		{object}	APIError
//	@Failure	500		{object}	APIError
//	@Router		/books/{isbn} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	logger := api.GetLoggerFromContext(r.Context())
	isbn := ps.ByName("isbn")
	if err := api.bookService.DeleteByISBN(r.Context(), isbn); err != nil {
		api.sendBookError(r.Context(), w, err, isbn, "failed to delete the book")
		return
	}
	logger.Info("success to delete book", zap.String("book.isbn", isbn))
	if err := WriteResponse(r.Context(), w, http.StatusOK, MessageResponse{Message: "Book deleted"}); err != nil {
		logger.Error("failed to send response", zap.Error(err))
	}
}
