package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateBookPayload ensures every schema violation is reported.
func TestValidateBookPayload(t *testing.T) {
	testCases := []struct {
		name       string
		payload    string
		violations []string
	}{
		{
			"missing body",
			``,
			[]string{"request body is required"},
		},
		{
			"missing fields",
			`{"isbn":"00000000","amazon_url":"https://amzn.to/x","author":"Jerome","language":"English","publisher":"Demo"}`,
			[]string{"(root): pages is required", "(root): title is required", "(root): year is required"},
		},
		{
			"not an object",
			`["isbn"]`,
			[]string{"(root): Invalid type. Expected: object, given: array"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateBookPayload([]byte(tc.payload))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ElementsMatch(t, tc.violations, verr.Violations)
		})
	}

	t.Run("wrong types", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":12,"amazon_url":"u","author":"a","language":"l","pages":"300","publisher":"p","title":"t","year":2020}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 2)
		for _, v := range verr.Violations {
			assert.Contains(t, v, "Invalid type")
		}
	})

	t.Run("pages below one", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":"0","amazon_url":"u","author":"a","language":"l","pages":0,"publisher":"p","title":"t","year":2020}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 1)
		assert.Contains(t, verr.Violations[0], "pages")
	})

	t.Run("case variant keys", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":"1","amazon_url":"u","author":"a","language":"l","pages":10,"publisher":"p","title":"t","year":2020,"Pages":-5,"ISBN":"other"}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{
			"(root): ISBN is not allowed, use isbn",
			"(root): Pages is not allowed, use pages",
		}, verr.Violations)
	})

	t.Run("integers beyond the column range", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":"0","amazon_url":"u","author":"a","language":"l","pages":2147483648,"publisher":"p","title":"t","year":3000000000}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 2)
		assert.Contains(t, verr.Violations[0]+verr.Violations[1], "pages")
		assert.Contains(t, verr.Violations[0]+verr.Violations[1], "year")
	})

	t.Run("year at the column bounds", func(t *testing.T) {
		book, err := ValidateBookPayload([]byte(`{"isbn":"0","amazon_url":"u","author":"a","language":"l","pages":2147483647,"publisher":"p","title":"t","year":-2147483648}`))
		require.NoError(t, err)
		assert.Equal(t, 2147483647, book.Pages)
		assert.Equal(t, -2147483648, book.Year)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":`))
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("integral float pages", func(t *testing.T) {
		_, err := ValidateBookPayload([]byte(`{"isbn":"0","amazon_url":"u","author":"a","language":"l","pages":500.0,"publisher":"p","title":"t","year":2020}`))
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("valid payload", func(t *testing.T) {
		book, err := ValidateBookPayload([]byte(`{"isbn":"00000000","amazon_url":"https://amzn.to/x","author":"Jerome","language":"English","pages":100,"publisher":"Demo","title":"Go","year":2023,"extra":true}`))
		require.NoError(t, err)
		assert.Equal(t, Book{
			ISBN:      "00000000",
			AmazonURL: "https://amzn.to/x",
			Author:    "Jerome",
			Language:  "English",
			Pages:     100,
			Publisher: "Demo",
			Title:     "Go",
			Year:      2023,
		}, book)
	})
}
