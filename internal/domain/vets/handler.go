package vets

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/vets", func(vr chi.Router) {
		vr.Get("/", listVetsHandler(svc, nil))
		vr.Post("/", createVetHandler(svc))

		active, inactive := true, false
		vr.Get("/active", listVetsHandler(svc, &active))
		vr.Get("/inactive", listVetsHandler(svc, &inactive))
		vr.Get("/topVets", topVetsHandler(svc))

		vr.Route("/{vetId}", func(ir chi.Router) {
			ir.Get("/", getVetHandler(svc))
			ir.Put("/", updateVetHandler(svc))
			ir.Delete("/", deleteVetHandler(svc))

			ir.Get("/ratings", listRatingsHandler(svc))
			ir.Post("/ratings", addRatingHandler(svc))
			ir.Get("/ratings/count", ratingCountHandler(svc))
			ir.Get("/ratings/average", ratingAverageHandler(svc))
			ir.Put("/ratings/{ratingId}", updateRatingHandler(svc))
			ir.Delete("/ratings/{ratingId}", deleteRatingHandler(svc))
		})
	})
}

type vetRequest struct {
	VetBillID   string      `json:"vetBillId"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email" validate:"omitempty,email"`
	PhoneNumber string      `json:"phoneNumber"`
	Resume      string      `json:"resume"`
	Workday     []string    `json:"workday"`
	Active      *bool       `json:"active"`
	Specialties []Specialty `json:"specialties"`
}

type vetResponse struct {
	VetID       string      `json:"vetId"`
	VetBillID   string      `json:"vetBillId"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phoneNumber"`
	Resume      string      `json:"resume"`
	Workday     []string    `json:"workday"`
	Active      bool        `json:"active"`
	Specialties []Specialty `json:"specialties"`
}

type topVetResponse struct {
	vetResponse
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

type ratingRequest struct {
	CustomerName    string `json:"customerName"`
	RateScore       int    `json:"rateScore"`
	RateDescription string `json:"rateDescription"`
	RateDate        string `json:"rateDate"` // YYYY-MM-DD opcional
}

type ratingResponse struct {
	RatingID        string `json:"ratingId"`
	VetID           string `json:"vetId"`
	CustomerName    string `json:"customerName"`
	RateScore       int    `json:"rateScore"`
	RateDescription string `json:"rateDescription"`
	RateDate        string `json:"rateDate"`
}

func (req vetRequest) input() VetInput {
	return VetInput{
		VetBillID:   req.VetBillID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Resume:      req.Resume,
		Workday:     req.Workday,
		Active:      req.Active,
		Specialties: req.Specialties,
	}
}

func (req ratingRequest) input() (RatingInput, error) {
	in := RatingInput{
		CustomerName:    req.CustomerName,
		RateScore:       req.RateScore,
		RateDescription: req.RateDescription,
	}
	if strings.TrimSpace(req.RateDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(req.RateDate))
		if err != nil {
			return RatingInput{}, errors.New("rateDate must be YYYY-MM-DD")
		}
		in.RateDate = &t
	}
	return in, nil
}

func decodeVet(w http.ResponseWriter, r *http.Request) (vetRequest, bool) {
	var req vetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func createVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeVet(w, r)
		if !ok {
			return
		}
		v, err := svc.Create(r.Context(), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toVetResponse(v))
	}
}

func listVetsHandler(svc *Service, active *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), active)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func topVetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.TopVets(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]topVetResponse, 0, len(items))
		for _, tv := range items {
			out = append(out, topVetResponse{
				vetResponse:   toVetResponse(tv.Vet),
				AverageRating: tv.Average,
				RatingCount:   tv.Count,
			})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), chi.URLParam(r, "vetId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toVetResponse(v))
	}
}

func updateVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeVet(w, r)
		if !ok {
			return
		}
		v, err := svc.Update(r.Context(), chi.URLParam(r, "vetId"), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toVetResponse(v))
	}
}

func deleteVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "vetId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func listRatingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Ratings(r.Context(), chi.URLParam(r, "vetId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]ratingResponse, 0, len(items))
		for _, rt := range items {
			out = append(out, toRatingResponse(rt))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func addRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ratingRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		rt, err := svc.AddRating(r.Context(), chi.URLParam(r, "vetId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toRatingResponse(rt))
	}
}

func updateRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ratingRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		rt, err := svc.UpdateRating(r.Context(), chi.URLParam(r, "vetId"), chi.URLParam(r, "ratingId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRatingResponse(rt))
	}
}

func deleteRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteRating(r.Context(), chi.URLParam(r, "vetId"), chi.URLParam(r, "ratingId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func ratingCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.RatingCount(r.Context(), chi.URLParam(r, "vetId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func ratingAverageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avg, err := svc.AverageRating(r.Context(), chi.URLParam(r, "vetId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, avg)
	}
}

func toVetResponse(v Vet) vetResponse {
	workday := v.Workday
	if workday == nil {
		workday = []string{}
	}
	specialties := v.Specialties
	if specialties == nil {
		specialties = []Specialty{}
	}
	return vetResponse{
		VetID:       v.ID,
		VetBillID:   v.VetBillID,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Email:       v.Email,
		PhoneNumber: v.PhoneNumber,
		Resume:      v.Resume,
		Workday:     workday,
		Active:      v.Active,
		Specialties: specialties,
	}
}

func toRatingResponse(r Rating) ratingResponse {
	return ratingResponse{
		RatingID:        r.ID,
		VetID:           r.VetID,
		CustomerName:    r.CustomerName,
		RateScore:       r.RateScore,
		RateDescription: r.RateDescription,
		RateDate:        r.RateDate.Format("2006-01-02"),
	}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Err(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrNotFound):
		respond.Err(w, http.StatusNotFound, err)
	case errors.Is(err, ErrUnprocessable):
		respond.Err(w, http.StatusUnprocessableEntity, err)
	default:
		respond.Err(w, http.StatusInternalServerError, err)
	}
}
