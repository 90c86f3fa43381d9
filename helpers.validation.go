package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// bookSchema lists the fields every create or update payload must carry.
const bookSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "book",
	"type": "object",
	"required": ["isbn", "amazon_url", "author", "language", "pages", "publisher", "title", "year"],
	"properties": {
		"isbn":       {"type": "string"},
		"amazon_url": {"type": "string"},
		"author":     {"type": "string"},
		"language":   {"type": "string"},
		"pages":      {"type": "integer", "minimum": 1, "maximum": 2147483647},
		"publisher":  {"type": "string"},
		"title":      {"type": "string"},
		"year":       {"type": "integer", "minimum": -2147483648, "maximum": 2147483647}
	}
}`

var bookJSONSchema = mustCompileSchema(bookSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("validation: invalid json schema: %v", err))
	}
	return s
}

// ValidateBookPayload checks the raw request body against the book schema
// and returns the decoded book. Every schema violation is reported.
func ValidateBookPayload(payload []byte) (Book, error) {
	var book Book
	if len(payload) == 0 {
		return book, &ValidationError{Violations: []string{"request body is required"}}
	}

	result, err := bookJSONSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return book, &ValidationError{Violations: []string{fmt.Sprintf("request body must be a valid json object: %v", err)}}
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return book, &ValidationError{Violations: violations}
	}

	return decodeBook(payload)
}

// decodeBook builds the book from the exact property names only.
// Keys matching a field name case-insensitively are violations.
func decodeBook(payload []byte) (Book, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Book{}, &ValidationError{Violations: []string{err.Error()}}
	}

	var book Book
	fields := map[string]interface{}{
		"isbn":       &book.ISBN,
		"amazon_url": &book.AmazonURL,
		"author":     &book.Author,
		"language":   &book.Language,
		"pages":      &book.Pages,
		"publisher":  &book.Publisher,
		"title":      &book.Title,
		"year":       &book.Year,
	}

	var violations []string
	for key, value := range raw {
		target, ok := fields[key]
		if !ok {
			for name := range fields {
				if strings.EqualFold(key, name) {
					violations = append(violations, fmt.Sprintf("(root): %s is not allowed, use %s", key, name))
				}
			}
			continue
		}
		// 500.0 is a valid schema integer but not a valid Go int.
		if err := json.Unmarshal(value, target); err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", key, err))
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		return Book{}, &ValidationError{Violations: violations}
	}
	return book, nil
}
