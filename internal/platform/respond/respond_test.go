package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestErr_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Err(rec, http.StatusInternalServerError, errors.New("pq: connection refused"))

	var body ErrorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.StatusCode != 500 || body.Message != "internal error" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = httptest.NewRecorder()
	Err(rec, http.StatusBadRequest, errors.New("amount must be > 0"))
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.StatusCode != 400 || body.Message != "amount must be > 0" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Milo"}`))
	if err := Decode(r, &v); err != nil || v.Name != "Milo" {
		t.Fatalf("decode: %v %+v", err, v)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	if err := Decode(r, &v); err == nil {
		t.Fatalf("expected unknown field error")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := Decode(r, &v); err == nil || err.Error() != "empty body" {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=2&min=1.5&exempt=true&bad=x", nil)

	if n, err := QueryInt(r, "page", 0); err != nil || n != 2 {
		t.Fatalf("QueryInt: %v %d", err, n)
	}
	if n, err := QueryInt(r, "size", 10); err != nil || n != 10 {
		t.Fatalf("QueryInt default: %v %d", err, n)
	}
	if _, err := QueryInt(r, "bad", 0); err == nil {
		t.Fatalf("expected error")
	}
	if f, err := QueryFloat(r, "min"); err != nil || f == nil || *f != 1.5 {
		t.Fatalf("QueryFloat: %v %v", err, f)
	}
	if b, err := QueryBool(r, "exempt"); err != nil || b == nil || !*b {
		t.Fatalf("QueryBool: %v %v", err, b)
	}
	if b, err := QueryBool(r, "missing"); err != nil || b != nil {
		t.Fatalf("QueryBool missing: %v %v", err, b)
	}
}
