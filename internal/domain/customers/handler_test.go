package customers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHandler_OwnerScopedPetRoutes(t *testing.T) {
	svc, pets := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateOwner(ctx, validOwner())
	b, _ := svc.CreateOwner(ctx, validOwner())
	p, _ := svc.CreatePet(ctx, b.ID, PetInput{Name: "Leo", PetTypeID: "dog"})

	r := chi.NewRouter()
	RegisterRoutes(r, svc)

	do := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}
	update := `{"name":"Max","petTypeId":"dog"}`

	if st := do(http.MethodPut, "/owners/"+a.ID+"/pets/"+p.ID, update); st != http.StatusNotFound {
		t.Fatalf("foreign update: expected 404, got %d", st)
	}
	if st := do(http.MethodDelete, "/owners/"+a.ID+"/pets/"+p.ID, ""); st != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", st)
	}
	if got := pets.byID[p.ID]; got.Name != "Leo" {
		t.Fatalf("pet must be untouched, got %+v", got)
	}

	if st := do(http.MethodPut, "/owners/"+b.ID+"/pets/"+p.ID, update); st != http.StatusOK {
		t.Fatalf("own update: expected 200, got %d", st)
	}
	if got := pets.byID[p.ID]; got.Name != "Max" {
		t.Fatalf("expected renamed pet, got %+v", got)
	}
	if st := do(http.MethodDelete, "/owners/"+b.ID+"/pets/"+p.ID, ""); st != http.StatusNoContent {
		t.Fatalf("own delete: expected 204, got %d", st)
	}
}
