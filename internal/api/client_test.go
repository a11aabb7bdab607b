package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalDecodesNumbersAndStrings(t *testing.T) {
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"number", `{"price": 19.99}`, 19.99},
		{"string", `{"price": "19.99"}`, 19.99},
		{"integer", `{"price": 7}`, 7},
		{"null", `{"price": null}`, 0},
		{"empty string", `{"price": ""}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p, err := New(srv.URL).Product(context.Background(), "p1")
			require.NoError(t, err)
			assert.InDelta(t, tc.want, float64(p.Price), 1e-9)
		})
	}
}

func TestErrorKindMapping(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{400, KindValidation},
		{401, KindAuthorization},
		{403, KindAuthorization},
		{404, KindNotFound},
		{500, KindNetwork},
		{502, KindNetwork},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}))

		_, err := New(srv.URL).Product(context.Background(), "p1")
		srv.Close()

		require.Error(t, err)
		assert.Equal(t, tc.want, KindOf(err), "status %d", tc.status)
		assert.Equal(t, tc.want == KindNetwork, IsRetryable(err), "status %d", tc.status)
	}
}

func TestUnreachableBackendIsRetryableNetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
	_, err := c.Product(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.True(t, IsRetryable(err))
}

func TestProductsQueryShape(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "/products/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":"p1","name":"a","price":"3.50"}]}`))
	}))
	defer srv.Close()

	page, err := New(srv.URL).Products(context.Background(), ProductQuery{
		Page:       2,
		Ordering:   "-price",
		Categories: []string{"c1", "c2"},
		MinPrice:   0,
		MaxPrice:   1000,
		Search:     "lamp",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"-price"}, gotQuery["ordering"])
	assert.Equal(t, []string{"c1", "c2"}, gotQuery["category"])
	assert.Equal(t, []string{"0"}, gotQuery["min_price"])
	assert.Equal(t, []string{"1000"}, gotQuery["max_price"])
	assert.Equal(t, []string{"lamp"}, gotQuery["search"])

	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.InDelta(t, 3.5, float64(page.Results[0].Price), 1e-9)
}

func TestAuthorizationHeaderFollowsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"total":0,"count":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CartSummary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	c.SetToken("tok-123")
	_, err = c.CartSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	c.SetToken("")
	_, err = c.CartSummary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestChangePasswordRequestShape(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")
	require.NoError(t, c.ChangePassword(context.Background(), "old-secret", "new-secret"))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/auth/change-password/", gotPath)
	assert.Equal(t, map[string]string{
		"old_password": "old-secret",
		"new_password": "new-secret",
	}, gotBody)
}

func TestResetPasswordRequestShape(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).ResetPassword(context.Background(), "user@shop.test"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/auth/reset-password/", gotPath)
	assert.Equal(t, map[string]string{"email": "user@shop.test"}, gotBody)
}

func TestRequestIDHeaderFollowsContext(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","name":"a","price":"3.50"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Product(WithRequestID(context.Background(), "rid-1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, "rid-1", gotID)

	// Without a pinned id the client mints one per request.
	_, err = c.Product(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
	assert.NotEqual(t, "rid-1", gotID)
}

func TestCategoriesFollowsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"count":3,"next":"?page=2","previous":null,"results":[{"id":"c1","name":"A"},{"id":"c2","name":"B"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":3,"next":null,"previous":"?page=1","results":[{"id":"c3","name":"C"}]}`))
	}))
	defer srv.Close()

	cats, err := New(srv.URL).Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "c3", cats[2].ID)
}
