package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rryowa/campus_session/internal/metrics"
	"github.com/rryowa/campus_session/internal/models"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken(context.Context) (string, error) {
	return s.token, s.err
}

func newTestJSONClient(t *testing.T) (*JSONClient, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewJSONClient(nil, 0, zaptest.NewLogger(t).Sugar(), m), m
}

func TestExecutor_NoTokenMeansNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	jc, _ := newTestJSONClient(t)
	exec := NewExecutor(jc, staticTokens{err: notAuthenticated(ErrNoSession)})

	err := exec.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL}, nil)
	require.Error(t, err)
	assert.Equal(t, KindNotAuthenticated, KindOf(err))
	assert.Zero(t, hits.Load())
}

func TestExecutor_AuthorizationWinsOverCallerHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	jc, _ := newTestJSONClient(t)
	exec := NewExecutor(jc, staticTokens{token: "real-token"})

	header := http.Header{}
	header["authorization"] = []string{"Bearer forged"}
	header.Set("X-Client", "campusctl")
	header.Set("Content-Type", "application/vnd.campus+json")

	out, err := Fetch[map[string]bool](context.Background(), exec, Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Header: header,
	})
	require.NoError(t, err)
	assert.True(t, out["ok"])

	assert.Equal(t, []string{"Bearer real-token"}, got.Values("Authorization"))
	assert.Equal(t, "campusctl", got.Get("X-Client"))
	assert.Equal(t, "application/vnd.campus+json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get(models.RequestIDHeader))
}

func TestExecutor_DefaultContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	jc, _ := newTestJSONClient(t)
	exec := NewExecutor(jc, staticTokens{token: "t"})

	require.NoError(t, exec.Do(context.Background(), Request{Method: http.MethodPost, URL: srv.URL}, nil))
	assert.Equal(t, models.ContentTypeJSON, contentType)
}

func TestJSONClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
		wantMsg    string
	}{
		{"error field", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, KindServer, 401, "Invalid credentials"},
		{"message field", http.StatusBadRequest, `{"message":"bad page size"}`, KindServer, 400, "bad page size"},
		{"error wins over message", http.StatusConflict, `{"error":"e","message":"m"}`, KindServer, 409, "e"},
		{"empty body", http.StatusBadGateway, ``, KindServer, 502, "HTTP 502"},
		{"non json body", http.StatusInternalServerError, `<html>oops</html>`, KindServer, 500, "HTTP 500"},
		{"malformed success body", http.StatusOK, `{"count":`, KindServer, 200, "malformed response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			jc, _ := newTestJSONClient(t)
			var out models.CourseList
			err := jc.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL}, &out)
			require.Error(t, err)

			var ae *AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, tt.wantStatus, ae.Status)
			assert.Equal(t, tt.wantMsg, ae.Message)
		})
	}
}

func TestJSONClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	jc, m := newTestJSONClient(t)
	err := jc.Do(context.Background(), Request{Method: http.MethodGet, URL: url}, nil)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests().WithLabelValues(string(KindTransport))))
}

func TestJSONClient_InvalidResponseRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"refresh_token": "only-refresh"})
	}))
	defer srv.Close()

	jc, _ := newTestJSONClient(t)
	var out models.LoginResponse
	err := jc.Do(context.Background(), Request{Method: http.MethodPost, URL: srv.URL}, &out)
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
	assert.ErrorIs(t, err, models.ErrMissingAccessToken)
}

func TestJSONClient_SendsBody(t *testing.T) {
	var got models.RefreshRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"access_token":"a2"}`))
	}))
	defer srv.Close()

	jc, m := newTestJSONClient(t)
	resp, err := NewRefreshEndpoint(jc, srv.URL).Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.RefreshToken)
	assert.Equal(t, "a2", resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests().WithLabelValues("success")))
}
