package carts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHandler_AddProduct_StockMessages(t *testing.T) {
	svc, _ := newTestService()
	c := mustCart(t, svc)
	if _, err := svc.AddProduct(context.Background(), c.ID, "collar", 1); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, svc)

	cases := []struct {
		name string
		path string
		want string
	}{
		{"out of stock", "/carts/" + c.ID + "/products/toy", "Toy is out of stock."},
		{"over stock", "/carts/" + c.ID + "/products/collar?quantity=2", "You cannot add more than 2 items. Only 2 items left in stock."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
			}
			var body struct {
				StatusCode int    `json:"statusCode"`
				Message    string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tc.want || body.StatusCode != http.StatusBadRequest {
				t.Fatalf("message = %q, want %q", body.Message, tc.want)
			}
		})
	}
}
