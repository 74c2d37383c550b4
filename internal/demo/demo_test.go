package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryFixtureIsValidJSON(t *testing.T) {
	paths := []string{"/api/ai/insights/123"}
	for path := range routes {
		paths = append(paths, path)
	}
	for _, path := range paths {
		data, ok := Fixture(path)
		require.True(t, ok, path)
		require.True(t, json.Valid(data), path)
	}

	_, ok := Fixture("/api/goals")
	require.False(t, ok)
	_, ok = Fixture("/api/ai/insights/")
	require.False(t, ok)
}

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusUnauthorized)
	})
	rec := httptest.NewRecorder()
	Middleware("auth_token")(next).ServeHTTP(rec, req)
	return rec, reached
}

func TestDemoCookieServesFixtureWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "1"})

	rec, reached := serve(t, req)
	require.False(t, reached)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-DevPulse-Demo"))

	var body struct {
		Success bool `json:"success"`
		Demo    bool `json:"demo"`
		Data    struct {
			Health struct {
				Score int `json:"score"`
			} `json:"health"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.True(t, body.Demo)
	require.Equal(t, 78, body.Data.Health.Score)
}

func TestRequestsPassThrough(t *testing.T) {
	cases := map[string]func() *http.Request{
		"no cookie": func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
		},
		"post": func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/api/dashboard/summary", nil)
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "1"})
			return r
		},
		"authenticated": func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "1"})
			r.Header.Set("Authorization", "Bearer abc")
			return r
		},
		"no fixture": func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "1"})
			return r
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			_, reached := serve(t, build())
			require.True(t, reached)
		})
	}
}

func TestEnableSetsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	Enable(rec, false)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, "1", cookies[0].Value)
}
