package productsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"petclinic/internal/ports/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Product(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/p-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"productId":"p-1","productName":"Kibble","productSalePrice":12.5,"averageRating":4.5,"productQuantity":7,"productStatus":"AVAILABLE"}`))
		case "/products/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"statusCode":404,"message":"not found"}`))
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	p, err := c.Product(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Kibble", p.Name)
	assert.Equal(t, 12.5, p.SalePrice)
	assert.Equal(t, 7, p.Quantity)

	_, err = c.Product(context.Background(), "nope")
	assert.True(t, errors.Is(err, catalog.ErrNotFound), "got %v", err)

	_, err = c.Product(context.Background(), "boom")
	assert.True(t, errors.Is(err, ErrUpstream), "got %v", err)
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.False(t, c.IsConfigured())

	_, err = c.Product(context.Background(), "p-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
