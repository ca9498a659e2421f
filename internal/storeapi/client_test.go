package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/solar-storefront/internal/bundle"
	"github.com/example/solar-storefront/internal/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec.Body))
		requests = append(requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

// ===== SubmitOrder Tests =====

func TestSubmitOrder_PostsGuestPayload(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, `{"success":true}`)
	client := NewClient(srv.URL+"/", time.Second)

	err := client.SubmitOrder(context.Background(), checkout.OrderSubmission{
		Items:    []checkout.Item{{ProductID: "prod-x", Quantity: 2}},
		Email:    "ama@example.com",
		Name:     "Ama",
		Phone:    "+237600000000",
		Location: "Douala",
		Guest:    true,
	})

	require.NoError(t, err)
	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/cart/checkout", req.Path)
	assert.Equal(t, "Douala", req.Body["location"])
	assert.Equal(t, []any{map[string]any{"product": "prod-x", "quantity": float64(2)}}, req.Body["items"])
	assert.NotContains(t, req.Body, "guest")
}

func TestSubmitOrder_AccountPayloadOmitsContact(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, ``)
	client := NewClient(srv.URL, time.Second, WithTokenSource(func(context.Context) string { return "tok" }))

	err := client.SubmitOrder(context.Background(), checkout.OrderSubmission{
		Items: []checkout.Item{{ProductID: "prod-x", Quantity: 1}},
		Email: "kofi@example.com",
	})

	require.NoError(t, err)
	req := (*requests)[0]
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Equal(t, "kofi@example.com", req.Body["email"])
	assert.NotContains(t, req.Body, "name")
	assert.NotContains(t, req.Body, "phone")
	assert.NotContains(t, req.Body, "location")
}

func TestSubmitOrder_Unauthorized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"message":"jwt expired"}`)
	client := NewClient(srv.URL, time.Second)

	err := client.SubmitOrder(context.Background(), checkout.OrderSubmission{Email: "a@b.c"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, MessageLoginRequired, apiErr.UserMessage())
	assert.True(t, IsUnauthorized(err))
}

func TestSubmitOrder_ServerMessageIsSurfaced(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"message field", `{"success":false,"message":"Insufficient stock for Mono 400W"}`, "Insufficient stock for Mono 400W"},
		{"error field", `{"error":"invalid email"}`, "invalid email"},
		{"no body", ``, ""},
		{"not json", `<html>bad gateway</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusBadRequest, tt.response)
			client := NewClient(srv.URL, time.Second)

			err := client.SubmitOrder(context.Background(), checkout.OrderSubmission{})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.UserMessage())
			assert.False(t, IsUnauthorized(err))
		})
	}
}

func TestSubmitOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, time.Second)

	err := client.SubmitOrder(context.Background(), checkout.OrderSubmission{})

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

// ===== SaveService Tests =====

func completeDraft() bundle.Draft {
	d := bundle.NewDraft()
	d.Description = "Home kit"
	d.Products[bundle.CategoryPanel] = bundle.Slot{ProductID: "pan-1", Quantity: 2}
	d.LaborCost = 200
	return d
}

func TestSaveService_CreatesWithPost(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, `{"success":true,"data":{"_id":"svc-1","description":"Home kit"}}`)
	client := NewClient(srv.URL, time.Second)

	saved, err := client.SaveService(context.Background(), "", completeDraft())

	require.NoError(t, err)
	assert.Equal(t, "svc-1", saved.ID)
	assert.Equal(t, "Home kit", saved.Description)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/services", req.Path)
	assert.Equal(t, float64(200), req.Body["laborCost"])
	assert.Contains(t, req.Body["products"], "panel")
}

func TestSaveService_UpdatesWithPut(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"success":true,"data":{}}`)
	client := NewClient(srv.URL, time.Second)

	saved, err := client.SaveService(context.Background(), "svc-9", completeDraft())

	require.NoError(t, err)
	assert.Equal(t, "svc-9", saved.ID)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/services/svc-9", req.Path)
}

func TestSaveService_Rejected(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden, `{"message":"Admins only"}`)
	client := NewClient(srv.URL, time.Second)

	_, err := client.SaveService(context.Background(), "", completeDraft())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Admins only", apiErr.Message)
}
