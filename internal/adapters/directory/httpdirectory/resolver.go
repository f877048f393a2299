package httpdirectory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petclinic/internal/platform/httpclient"
	"petclinic/internal/ports/directory"
)

var (
	ErrNotConfigured = errors.New("directory not configured")
	ErrUpstream      = errors.New("directory upstream error")
)

type Config struct {
	CustomersURL string
	VetsURL      string
	Timeout      time.Duration
}

// Resolver implementa directory.Resolver contra GET /owners/{id} y GET /vets/{id}.
type Resolver struct {
	customers *httpclient.Client
	vets      *httpclient.Client
}

var _ directory.Resolver = (*Resolver)(nil)

func NewResolver(cfg Config) (*Resolver, error) {
	customers, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.CustomersURL), cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	vets, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.VetsURL), cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("vets: %w", err)
	}
	return &Resolver{customers: customers, vets: vets}, nil
}

type personResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *Resolver) Owner(ctx context.Context, ownerID string) (directory.Person, error) {
	return r.lookup(ctx, r.customers, "/owners/", ownerID)
}

func (r *Resolver) Vet(ctx context.Context, vetID string) (directory.Person, error) {
	return r.lookup(ctx, r.vets, "/vets/", vetID)
}

func (r *Resolver) lookup(ctx context.Context, c *httpclient.Client, prefix, id string) (directory.Person, error) {
	if c == nil || c.BaseURL == "" {
		return directory.Person{}, ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.Person{}, directory.ErrNotFound
	}

	var out personResponse
	err := c.DoJSON(ctx, http.MethodGet, prefix+url.PathEscape(id), nil, nil, &out)
	switch status := httpclient.StatusOf(err); {
	case err == nil:
	case status == http.StatusNotFound:
		return directory.Person{}, fmt.Errorf("%w: %s%s", directory.ErrNotFound, prefix, id)
	default:
		return directory.Person{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return directory.Person{FirstName: out.FirstName, LastName: out.LastName}, nil
}
