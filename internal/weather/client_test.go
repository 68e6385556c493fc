package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", srv.Client())
	c.BaseURL = srv.URL
	return c
}

func TestCurrentSuccess(t *testing.T) {
	var gotQuery map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"appid": r.URL.Query().Get("appid"),
			"q":     r.URL.Query().Get("q"),
			"units": r.URL.Query().Get("units"),
		}
		w.Write([]byte(`{
			"cod": 200,
			"weather": [{"description": "scattered clouds"}],
			"main": {"temp": 28.37, "feels_like": 31.2, "humidity": 74},
			"wind": {"speed": 3.6}
		}`))
	})

	rep, err := c.Current(context.Background(), "mumbai")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"appid": "test-key", "q": "mumbai", "units": "metric"}, gotQuery)
	assert.Equal(t, "scattered clouds", rep.Description)
	assert.Equal(t, 28.37, rep.Temp)
	require.NotNil(t, rep.FeelsLike)
	assert.Equal(t, 31.2, *rep.FeelsLike)
	require.NotNil(t, rep.Humidity)
	assert.Equal(t, int64(74), *rep.Humidity)
	require.NotNil(t, rep.WindSpeed)
	assert.Equal(t, 3.6, *rep.WindSpeed)
}

func TestCurrentOptionalFieldsAbsent(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod": "200", "main": {"temp": 10}}`))
	})

	rep, err := c.Current(context.Background(), "oslo")
	require.NoError(t, err)
	assert.Equal(t, "No description available", rep.Description)
	assert.Nil(t, rep.FeelsLike)
	assert.Nil(t, rep.Humidity)
	assert.Nil(t, rep.WindSpeed)
}

func TestCurrentFailureKinds(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantReason string
	}{
		{"auth", http.StatusUnauthorized, `{}`, KindAuth, ""},
		{"city not found", http.StatusNotFound, `{}`, KindNotFound, ""},
		{"server error", http.StatusBadGateway, `{}`, KindTransport, ""},
		{"cod error in body", http.StatusOK, `{"cod": "404", "message": "city not found"}`, KindNotFound, "city not found"},
		{"malformed body", http.StatusOK, `{"cod":`, KindDecode, ""},
		{"temperature missing", http.StatusOK, `{"cod": 200, "main": {}}`, KindDecode, "temperature missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Current(context.Background(), "atlantis")
			var werr *Error
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, tt.wantKind, werr.Kind)
			assert.Equal(t, tt.wantReason, werr.Reason)
			assert.Equal(t, "atlantis", werr.City)
		})
	}
}

func TestCurrentTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", &http.Client{Timeout: 20 * time.Millisecond})
	c.BaseURL = srv.URL

	_, err := c.Current(context.Background(), "paris")
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindTimeout, werr.Kind)
}
