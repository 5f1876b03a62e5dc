package productsapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuscope/statuscope/internal/status"
	"github.com/statuscope/statuscope/internal/status/productsapi"
)

func newTestClient(handler http.HandlerFunc) (*productsapi.Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := productsapi.NewClient(productsapi.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	return client, server
}

func TestListProductsEncodesParams(t *testing.T) {
	var gotQuery map[string][]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/product", r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(status.ProductPage{TotalPages: 3})
	})
	defer server.Close()

	page, err := client.ListProducts(context.Background(), 2, 10, "  café ")
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"10"}, gotQuery["page_size"])
	assert.Equal(t, []string{"café"}, gotQuery["search"])
}

func TestListProductsOmitsBlankSearch(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		assert.False(t, present, "blank search must be omitted entirely")
		_ = json.NewEncoder(w).Encode(status.ProductPage{})
	})
	defer server.Close()

	_, err := client.ListProducts(context.Background(), 1, 10, "   ")
	require.NoError(t, err)
}

func TestCreateProductSendsJSONBody(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/product", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Checkout", payload["name"])
		assert.Equal(t, "Payment flow", payload["description"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(status.ProductRecord{ID: 7, Name: "Checkout"})
	})
	defer server.Close()

	record, err := client.CreateProduct(context.Background(), productsapi.ProductCreate{
		Name:        "Checkout",
		Description: productsapi.String("Payment flow"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)
}

func TestUpdateProductPartialFieldSemantics(t *testing.T) {
	tests := []struct {
		name     string
		payload  productsapi.ProductUpdate
		wantBody string
	}{
		{
			name:     "nil fields omitted",
			payload:  productsapi.ProductUpdate{Name: productsapi.String("New")},
			wantBody: `{"name":"New"}`,
		},
		{
			name:     "pointer to empty string clears",
			payload:  productsapi.ProductUpdate{Description: productsapi.String("")},
			wantBody: `{"description":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, "/product/42", r.URL.Path)
				raw, readErr := io.ReadAll(r.Body)
				require.NoError(t, readErr)
				gotBody = string(raw)
				_ = json.NewEncoder(w).Encode(status.ProductRecord{ID: 42})
			})
			defer server.Close()

			_, err := client.UpdateProduct(context.Background(), 42, tt.payload)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, gotBody)
		})
	}
}

func TestDeleteProductNoContent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/product/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	require.NoError(t, client.DeleteProduct(context.Background(), 9))
}

func TestComponentEndpoints(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/component":
			var payload productsapi.ComponentCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, int64(3), payload.ProductID)
			assert.Equal(t, status.ComponentBackend, payload.Type)
			_ = json.NewEncoder(w).Encode(status.ComponentRecord{ID: 31})
		case r.Method == http.MethodPatch && r.URL.Path == "/component/31":
			_ = json.NewEncoder(w).Encode(status.ComponentRecord{ID: 31, Name: "renamed"})
		case r.Method == http.MethodDelete && r.URL.Path == "/component/31":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	defer server.Close()

	ctx := context.Background()

	created, err := client.CreateComponent(ctx, productsapi.ComponentCreate{
		ProductID: 3,
		Name:      "api",
		Type:      status.ComponentBackend,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(31), created.ID)

	updated, err := client.UpdateComponent(ctx, 31, productsapi.ComponentUpdate{
		Name: productsapi.String("renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	require.NoError(t, client.DeleteComponent(ctx, 31))
}

func TestValidationErrorDecoding(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[
			{"loc":["body","name"],"msg":"field required"},
			{"loc":["body","components",0,"type"],"msg":""},
			{"loc":[],"msg":"malformed"}
		]}`))
	})
	defer server.Close()

	_, err := client.CreateProduct(context.Background(), productsapi.ProductCreate{Name: ""})
	require.Error(t, err)

	var apiErr *productsapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t,
		"body.name: field required | body.components.0.type: invalid value | request: malformed",
		apiErr.ValidationMessage())
}

func TestNonValidationErrorKeepsStatusCode(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("gateway blew up"))
	})
	defer server.Close()

	err := client.DeleteProduct(context.Background(), 1)
	require.Error(t, err)

	var apiErr *productsapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, apiErr.IsValidation())
	assert.Empty(t, apiErr.ValidationMessage())
}
