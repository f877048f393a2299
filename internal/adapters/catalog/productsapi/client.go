package productsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petclinic/internal/platform/httpclient"
	"petclinic/internal/ports/catalog"
)

var (
	ErrNotConfigured = errors.New("products client not configured")
	ErrUpstream      = errors.New("products upstream error")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implementa catalog.Catalog contra GET /products/{id}.
type Client struct {
	http *httpclient.Client
}

var _ catalog.Catalog = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	c, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

// productResponse es el contrato JSON del servicio products.
type productResponse struct {
	ProductID          string  `json:"productId"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductSalePrice   float64 `json:"productSalePrice"`
	AverageRating      float64 `json:"averageRating"`
	ProductQuantity    int     `json:"productQuantity"`
}

func (c *Client) Product(ctx context.Context, productID string) (catalog.Product, error) {
	if !c.IsConfigured() {
		return catalog.Product{}, ErrNotConfigured
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return catalog.Product{}, catalog.ErrNotFound
	}

	var out productResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil, &out)
	switch status := httpclient.StatusOf(err); {
	case err == nil:
	case status == http.StatusNotFound:
		return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, productID)
	default:
		return catalog.Product{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return catalog.Product{
		ID:            out.ProductID,
		Name:          out.ProductName,
		Description:   out.ProductDescription,
		SalePrice:     out.ProductSalePrice,
		AverageRating: out.AverageRating,
		Quantity:      out.ProductQuantity,
	}, nil
}
