package joke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client())
	c.BaseURL = srv.URL
	return c
}

func TestRandomSuccess(t *testing.T) {
	var gotAccept string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"id": "abc", "joke": "Why did the Go routine cross the road?", "status": 200}`))
	})

	joke, err := c.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "Why did the Go routine cross the road?", joke)
}

func TestRandomFailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{"server error", http.StatusServiceUnavailable, `{}`, KindTransport},
		{"malformed body", http.StatusOK, `<html>`, KindDecode},
		{"missing joke field", http.StatusOK, `{"status": 200}`, KindMissingField},
		{"empty joke field", http.StatusOK, `{"joke": ""}`, KindMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Random(context.Background())
			var jerr *Error
			require.ErrorAs(t, err, &jerr)
			assert.Equal(t, tt.wantKind, jerr.Kind)
		})
	}
}
