package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ownerOverview struct {
	Owner          json.RawMessage `json:"owner"`
	Pets           json.RawMessage `json:"pets"`
	Bills          json.RawMessage `json:"bills"`
	CurrentBalance float64         `json:"currentBalance"`
}

type vetOverview struct {
	Vet           json.RawMessage `json:"vet"`
	Ratings       json.RawMessage `json:"ratings"`
	AverageRating float64         `json:"averageRating"`
}

// ownerOverviewHandler junta owner, mascotas, facturas y saldo en paralelo.
func (g *Gateway) ownerOverviewHandler(w http.ResponseWriter, r *http.Request) {
	id := url.PathEscape(chi.URLParam(r, "ownerId"))
	var out ownerOverview

	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		return g.call(ctx, r, ServiceCustomers, http.MethodGet, "/owners/"+id, nil, &out.Owner)
	})
	eg.Go(func() error {
		return g.call(ctx, r, ServiceCustomers, http.MethodGet, "/owners/"+id+"/pets", nil, &out.Pets)
	})
	eg.Go(func() error {
		return g.call(ctx, r, ServiceBilling, http.MethodGet, "/bills/customer/"+id+"/bills", nil, &out.Bills)
	})
	eg.Go(func() error {
		return g.call(ctx, r, ServiceBilling, http.MethodGet, "/bills/customer/"+id+"/bills/current-balance", nil, &out.CurrentBalance)
	})
	if err := eg.Wait(); err != nil {
		g.writeUpstreamErr(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// vetOverviewHandler junta el vet, sus ratings y el promedio.
func (g *Gateway) vetOverviewHandler(w http.ResponseWriter, r *http.Request) {
	id := url.PathEscape(chi.URLParam(r, "vetId"))
	var out vetOverview

	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		return g.call(ctx, r, ServiceVets, http.MethodGet, "/vets/"+id, nil, &out.Vet)
	})
	eg.Go(func() error {
		return g.call(ctx, r, ServiceVets, http.MethodGet, "/vets/"+id+"/ratings", nil, &out.Ratings)
	})
	eg.Go(func() error {
		return g.call(ctx, r, ServiceVets, http.MethodGet, "/vets/"+id+"/ratings/average", nil, &out.AverageRating)
	})
	if err := eg.Wait(); err != nil {
		g.writeUpstreamErr(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Telephone string `json:"telephone" validate:"required,numeric,len=10"`
}

type registerResponse struct {
	User  json.RawMessage `json:"user"`
	Owner json.RawMessage `json:"owner"`
}

// registerHandler crea el usuario en auth y después el owner con el mismo id.
// Si falla el owner se borra el usuario recién creado.
func (g *Gateway) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	var out registerResponse
	err := g.call(r.Context(), r, ServiceAuth, http.MethodPost, "/users", map[string]string{
		"userId":   id,
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}, &out.User)
	if err != nil {
		g.writeUpstreamErr(w, err)
		return
	}

	err = g.call(r.Context(), r, ServiceCustomers, http.MethodPost, "/owners", map[string]string{
		"ownerId":   id,
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"address":   req.Address,
		"city":      req.City,
		"province":  req.Province,
		"telephone": req.Telephone,
	}, &out.Owner)
	if err != nil {
		g.rollbackUser(r, id)
		g.writeUpstreamErr(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, out)
}

func (g *Gateway) rollbackUser(r *http.Request, id string) {
	ctx := context.WithoutCancel(r.Context())
	if err := g.call(ctx, r, ServiceAuth, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil); err != nil {
		g.log.Error("register rollback failed", map[string]any{"userId": id, "error": err.Error()})
	}
}
