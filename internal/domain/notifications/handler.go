package notifications

import (
	"errors"
	"net/http"
	"time"

	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listHandler(svc))
		nr.Post("/", sendHandler(svc))
		nr.Get("/{notificationId}", getHandler(svc))
		nr.Patch("/{notificationId}/read", markReadHandler(svc))
		nr.Delete("/{notificationId}", deleteHandler(svc))
	})
}

type sendRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body"`
}

type notificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    Status     `json:"status"`
	Reference string     `json:"reference,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), Filter{Recipient: q.Get("recipient"), Type: q.Get("type")})
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toResponse(n))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func sendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		n, err := svc.Send(r.Context(), Input{Recipient: req.Recipient, Subject: req.Subject, Body: req.Body})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toResponse(n))
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Get(r.Context(), chi.URLParam(r, "notificationId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(n))
	}
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkRead(r.Context(), chi.URLParam(r, "notificationId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(n))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "notificationId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Body:      n.Body,
		Status:    n.Status,
		Reference: n.Reference,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Err(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrNotFound):
		respond.Err(w, http.StatusNotFound, err)
	default:
		respond.Err(w, http.StatusInternalServerError, err)
	}
}
