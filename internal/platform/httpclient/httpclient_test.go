package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/owners" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Trace") != "abc" {
			http.Error(w, "missing header", http.StatusBadRequest)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"ownerId":"o-1","firstName":%q}`, in["firstName"])
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var out struct {
		OwnerID   string `json:"ownerId"`
		FirstName string `json:"firstName"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "owners", map[string]string{"X-Trace": "abc"},
		map[string]string{"firstName": "Ana"}, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.OwnerID != "o-1" || out.FirstName != "Ana" {
		t.Fatalf("unexpected out: %+v", out)
	}
}

func TestDoJSON_Non2xxReturnsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(` {"message":"duplicate"} `))
	}))
	defer ts.Close()

	c := New(time.Second)
	err := c.DoJSON(context.Background(), http.MethodGet, ts.URL+"/x", nil, nil, nil)
	if StatusOf(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(err.Error(), `"message":"duplicate"`) {
		t.Fatalf("body not kept: %v", err)
	}
}

func TestDo_PassesThroughStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total", "3")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	resp, err := c.Do(context.Background(), http.MethodGet, "/missing", nil, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || resp.Header.Get("X-Total") != "3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestResolveURL_RelativeWithoutBase(t *testing.T) {
	c := New(0)
	if _, err := c.resolveURL("/owners"); err == nil {
		t.Fatalf("expected error without BaseURL")
	}
}
