package customers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/owners", func(or chi.Router) {
		or.Get("/", listOwnersHandler(svc))
		or.Post("/", createOwnerHandler(svc))
		or.Get("/page", pageOwnersHandler(svc))
		or.Get("/count", countOwnersHandler(svc))

		or.Get("/{ownerId}", getOwnerHandler(svc))
		or.Put("/{ownerId}", updateOwnerHandler(svc))
		or.Delete("/{ownerId}", deleteOwnerHandler(svc))

		or.Get("/{ownerId}/pets", listOwnerPetsHandler(svc))
		or.Post("/{ownerId}/pets", createPetHandler(svc))

		// mismas operaciones que /pets/{petId}, acotadas a las mascotas del owner
		or.Route("/{ownerId}/pets/{petId}", func(op chi.Router) {
			op.Use(ownedPet(svc))
			op.Get("/", getPetHandler(svc))
			op.Put("/", updatePetHandler(svc))
			op.Delete("/", deletePetHandler(svc))
			op.Put("/photo", putPhotoHandler(svc))
			op.Get("/photo", getPhotoHandler(svc))
		})
	})

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petId}", getPetHandler(svc))
		pr.Put("/{petId}", updatePetHandler(svc))
		pr.Delete("/{petId}", deletePetHandler(svc))
		pr.Patch("/{petId}/active", setPetActiveHandler(svc))
		pr.Put("/{petId}/photo", putPhotoHandler(svc))
		pr.Get("/{petId}/photo", getPhotoHandler(svc))
	})

	r.Route("/pettypes", func(tr chi.Router) {
		tr.Get("/", listPetTypesHandler(svc))
		tr.Post("/", createPetTypeHandler(svc))
		tr.Get("/{petTypeId}", getPetTypeHandler(svc))
		tr.Put("/{petTypeId}", updatePetTypeHandler(svc))
		tr.Delete("/{petTypeId}", deletePetTypeHandler(svc))
	})
}

type ownerRequest struct {
	OwnerID   string `json:"ownerId"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Telephone string `json:"telephone" validate:"required,numeric,len=10"`
}

type ownerResponse struct {
	OwnerID   string        `json:"ownerId"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Address   string        `json:"address"`
	City      string        `json:"city"`
	Province  string        `json:"province"`
	Telephone string        `json:"telephone"`
	Pets      []petResponse `json:"pets,omitempty"`
}

type petRequest struct {
	Name      string  `json:"name" validate:"required"`
	BirthDate string  `json:"birthDate"` // YYYY-MM-DD opcional
	PetTypeID string  `json:"petTypeId" validate:"required"`
	Weight    float64 `json:"weight" validate:"gte=0"`
	IsActive  *bool   `json:"isActive"`
}

type petResponse struct {
	PetID     string  `json:"petId"`
	OwnerID   string  `json:"ownerId"`
	Name      string  `json:"name"`
	BirthDate string  `json:"birthDate,omitempty"`
	PetTypeID string  `json:"petTypeId"`
	Weight    float64 `json:"weight"`
	IsActive  bool    `json:"isActive"`
}

type petTypeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type petTypeResponse struct {
	PetTypeID   string `json:"petTypeId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req ownerRequest) input() OwnerInput {
	return OwnerInput{
		ID:        req.OwnerID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		City:      req.City,
		Province:  req.Province,
		Telephone: strings.TrimSpace(req.Telephone),
	}
}

func (req petRequest) input() (PetInput, error) {
	in := PetInput{
		Name:      req.Name,
		PetTypeID: req.PetTypeID,
		Weight:    req.Weight,
		IsActive:  req.IsActive,
	}
	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(req.BirthDate))
		if err != nil {
			return PetInput{}, errors.New("birthDate must be YYYY-MM-DD")
		}
		in.BirthDate = &t
	}
	return in, nil
}

// decodeValid decodifica y valida el DTO; responde 400 si algo falla.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := respond.Decode(r, v); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func ownerFilterFromQuery(r *http.Request) OwnerFilter {
	q := r.URL.Query()
	return OwnerFilter{
		OwnerID:   q.Get("ownerId"),
		FirstName: q.Get("firstName"),
		LastName:  q.Get("lastName"),
		Telephone: q.Get("telephone"),
		City:      q.Get("city"),
	}
}

func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if !decodeValid(w, r, &req) {
			return
		}
		o, err := svc.CreateOwner(r.Context(), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toOwnerResponse(o, nil))
	}
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListOwners(r.Context(), ownerFilterFromQuery(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOwners(w, items)
	}
}

func pageOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := respond.QueryInt(r, "page", 0)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		size, err := respond.QueryInt(r, "size", DefaultPageSize)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.PageOwners(r.Context(), ownerFilterFromQuery(r), page, size)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOwners(w, items)
	}
}

func countOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.CountOwners(r.Context(), ownerFilterFromQuery(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	// Incluye las mascotas del owner.
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := chi.URLParam(r, "ownerId")
		o, err := svc.GetOwner(r.Context(), ownerID)
		if err != nil {
			writeErr(w, err)
			return
		}
		pets, err := svc.ListPetsByOwner(r.Context(), ownerID)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toOwnerResponse(o, pets))
	}
}

func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if !decodeValid(w, r, &req) {
			return
		}
		o, err := svc.UpdateOwner(r.Context(), chi.URLParam(r, "ownerId"), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toOwnerResponse(o, nil))
	}
}

func deleteOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteOwner(r.Context(), chi.URLParam(r, "ownerId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func listOwnerPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPetsByOwner(r.Context(), chi.URLParam(r, "ownerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writePets(w, items)
	}
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if !decodeValid(w, r, &req) {
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.CreatePet(r.Context(), chi.URLParam(r, "ownerId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPets(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writePets(w, items)
	}
}

// ownedPet corta con 404 si {petId} no es de {ownerId}.
func ownedPet(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := svc.OwnerPet(r.Context(), chi.URLParam(r, "ownerId"), chi.URLParam(r, "petId")); err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPet(r.Context(), chi.URLParam(r, "petId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if !decodeValid(w, r, &req) {
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.UpdatePet(r.Context(), chi.URLParam(r, "petId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePet(r.Context(), chi.URLParam(r, "petId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func setPetActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := respond.QueryBool(r, "isActive")
		if err != nil || active == nil {
			respond.Error(w, http.StatusBadRequest, "isActive must be true or false")
			return
		}
		p, err := svc.SetPetActive(r.Context(), chi.URLParam(r, "petId"), *active)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

func putPhotoHandler(svc *Service) http.HandlerFunc {
	// Body crudo; el content type sale del header.
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxPhotoBytes+1))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "cannot read photo")
			return
		}
		ph, err := svc.SetPhoto(r.Context(), chi.URLParam(r, "petId"), r.Header.Get("Content-Type"), data)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{
			"petId":       ph.PetID,
			"contentType": ph.ContentType,
			"size":        len(ph.Data),
		})
	}
}

func getPhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ph, err := svc.GetPhoto(r.Context(), chi.URLParam(r, "petId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", ph.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(ph.Data)
	}
}

func listPetTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPetTypes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]petTypeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toPetTypeResponse(t))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func createPetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petTypeRequest
		if !decodeValid(w, r, &req) {
			return
		}
		t, err := svc.CreatePetType(r.Context(), PetTypeInput{Name: req.Name, Description: req.Description})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toPetTypeResponse(t))
	}
}

func getPetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetPetType(r.Context(), chi.URLParam(r, "petTypeId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPetTypeResponse(t))
	}
}

func updatePetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petTypeRequest
		if !decodeValid(w, r, &req) {
			return
		}
		t, err := svc.UpdatePetType(r.Context(), chi.URLParam(r, "petTypeId"), PetTypeInput{Name: req.Name, Description: req.Description})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPetTypeResponse(t))
	}
}

func deletePetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePetType(r.Context(), chi.URLParam(r, "petTypeId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func writeOwners(w http.ResponseWriter, items []Owner) {
	out := make([]ownerResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOwnerResponse(o, nil))
	}
	respond.JSON(w, http.StatusOK, out)
}

func writePets(w http.ResponseWriter, items []Pet) {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func toOwnerResponse(o Owner, pets []Pet) ownerResponse {
	resp := ownerResponse{
		OwnerID:   o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Address:   o.Address,
		City:      o.City,
		Province:  o.Province,
		Telephone: o.Telephone,
	}
	for _, p := range pets {
		resp.Pets = append(resp.Pets, toPetResponse(p))
	}
	return resp
}

func toPetResponse(p Pet) petResponse {
	resp := petResponse{
		PetID:     p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		PetTypeID: p.PetTypeID,
		Weight:    p.Weight,
		IsActive:  p.IsActive,
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	return resp
}

func toPetTypeResponse(t PetType) petTypeResponse {
	return petTypeResponse{PetTypeID: t.ID, Name: t.Name, Description: t.Description}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Err(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrNotFound):
		respond.Err(w, http.StatusNotFound, err)
	case errors.Is(err, ErrConflict):
		respond.Err(w, http.StatusConflict, err)
	case errors.Is(err, ErrUnprocessable):
		respond.Err(w, http.StatusUnprocessableEntity, err)
	default:
		respond.Err(w, http.StatusInternalServerError, err)
	}
}
