package vets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
)

type Service struct {
	repo    Repository
	ratings RatingRepository
	now     func() time.Time
}

func NewService(repo Repository, ratings RatingRepository) *Service {
	return &Service{
		repo:    repo,
		ratings: ratings,
		now:     time.Now,
	}
}

type VetInput struct {
	VetBillID   string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Resume      string
	Workday     []string
	Active      *bool
	Specialties []Specialty
}

func (s *Service) Create(ctx context.Context, in VetInput) (Vet, error) {
	v := Vet{
		VetBillID:   strings.TrimSpace(in.VetBillID),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Resume:      strings.TrimSpace(in.Resume),
		Workday:     in.Workday,
		Active:      true,
		Specialties: withIDs(in.Specialties),
	}
	if in.Active != nil {
		v.Active = *in.Active
	}

	switch {
	case v.FirstName == "":
		return Vet{}, fmt.Errorf("%w: firstName is required", ErrInvalidInput)
	case v.LastName == "":
		return Vet{}, fmt.Errorf("%w: lastName is required", ErrInvalidInput)
	case v.Email == "":
		return Vet{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if err := s.ensureEmailFree(ctx, v.Email, ""); err != nil {
		return Vet{}, err
	}

	now := s.now()
	v.ID = uuid.NewString()
	if v.VetBillID == "" {
		v.VetBillID = uuid.NewString()
	}
	v.CreatedAt = now
	v.UpdatedAt = now

	if err := s.repo.Create(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	other, err := s.repo.GetByEmail(ctx, email)
	if err == nil && other.ID != selfID {
		return fmt.Errorf("%w: email %s is already in use", ErrUnprocessable, email)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func withIDs(in []Specialty) []Specialty {
	out := make([]Specialty, 0, len(in))
	for _, sp := range in {
		sp.Name = strings.TrimSpace(sp.Name)
		if sp.Name == "" {
			continue
		}
		if strings.TrimSpace(sp.ID) == "" {
			sp.ID = uuid.NewString()
		}
		out = append(out, sp)
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (Vet, error) {
	if strings.TrimSpace(id) == "" {
		return Vet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, active *bool) ([]Vet, error) {
	return s.repo.List(ctx, active)
}

// Update ignora campos vacíos y deja el valor guardado.
func (s *Service) Update(ctx context.Context, id string, in VetInput) (Vet, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return Vet{}, err
	}

	set := func(dst *string, src string) {
		if t := strings.TrimSpace(src); t != "" {
			*dst = t
		}
	}
	set(&v.VetBillID, in.VetBillID)
	set(&v.FirstName, in.FirstName)
	set(&v.LastName, in.LastName)
	set(&v.PhoneNumber, in.PhoneNumber)
	set(&v.Resume, in.Resume)

	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != v.Email {
		if err := s.ensureEmailFree(ctx, email, v.ID); err != nil {
			return Vet{}, err
		}
		v.Email = email
	}
	if len(in.Workday) > 0 {
		v.Workday = in.Workday
	}
	if len(in.Specialties) > 0 {
		v.Specialties = withIDs(in.Specialties)
	}
	if in.Active != nil {
		v.Active = *in.Active
	}
	v.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, v); err != nil {
		return Vet{}, err
	}
	return v, nil
}

// Delete borra el vet y sus ratings.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.ratings.DeleteByVet(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// -------------------------
// Ratings
// -------------------------

type RatingInput struct {
	CustomerName    string
	RateScore       int
	RateDescription string
	RateDate        *time.Time
}

func validateRating(in RatingInput) error {
	if in.RateScore < MinScore || in.RateScore > MaxScore {
		return fmt.Errorf("%w: rateScore must be between %d and %d", ErrInvalidInput, MinScore, MaxScore)
	}
	if len([]rune(in.RateDescription)) >= MaxDescriptionLen {
		return fmt.Errorf("%w: rateDescription must be shorter than %d characters", ErrInvalidInput, MaxDescriptionLen)
	}
	return nil
}

func (s *Service) AddRating(ctx context.Context, vetID string, in RatingInput) (Rating, error) {
	if _, err := s.Get(ctx, vetID); err != nil {
		return Rating{}, err
	}
	if err := validateRating(in); err != nil {
		return Rating{}, err
	}

	r := Rating{
		ID:              uuid.NewString(),
		VetID:           vetID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		RateScore:       in.RateScore,
		RateDescription: strings.TrimSpace(in.RateDescription),
		RateDate:        s.now(),
	}
	if in.RateDate != nil {
		r.RateDate = *in.RateDate
	}
	if err := s.ratings.Create(ctx, r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Service) Ratings(ctx context.Context, vetID string) ([]Rating, error) {
	if _, err := s.Get(ctx, vetID); err != nil {
		return nil, err
	}
	return s.ratings.ListByVet(ctx, vetID)
}

func (s *Service) rating(ctx context.Context, vetID, ratingID string) (Rating, error) {
	r, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return Rating{}, err
	}
	if r.VetID != vetID {
		return Rating{}, ErrNotFound
	}
	return r, nil
}

func (s *Service) UpdateRating(ctx context.Context, vetID, ratingID string, in RatingInput) (Rating, error) {
	r, err := s.rating(ctx, vetID, ratingID)
	if err != nil {
		return Rating{}, err
	}
	if err := validateRating(in); err != nil {
		return Rating{}, err
	}
	r.RateScore = in.RateScore
	r.RateDescription = strings.TrimSpace(in.RateDescription)
	if name := strings.TrimSpace(in.CustomerName); name != "" {
		r.CustomerName = name
	}
	if in.RateDate != nil {
		r.RateDate = *in.RateDate
	}
	if err := s.ratings.Update(ctx, r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Service) DeleteRating(ctx context.Context, vetID, ratingID string) error {
	if _, err := s.rating(ctx, vetID, ratingID); err != nil {
		return err
	}
	return s.ratings.Delete(ctx, ratingID)
}

func (s *Service) RatingCount(ctx context.Context, vetID string) (int, error) {
	rs, err := s.Ratings(ctx, vetID)
	if err != nil {
		return 0, err
	}
	return len(rs), nil
}

func (s *Service) AverageRating(ctx context.Context, vetID string) (float64, error) {
	rs, err := s.Ratings(ctx, vetID)
	if err != nil {
		return 0, err
	}
	return Average(rs), nil
}

// Average trunca a 2 decimales; 0 sin ratings.
func Average(rs []Rating) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.RateScore
	}
	return truncate2(float64(sum) / float64(len(rs)))
}

func truncate2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 2 {
		s = s[:dot+3]
	}
	out, _ := strconv.ParseFloat(s, 64)
	return out
}

// TopVets devuelve los 3 mejores promedios. Empate: más ratings primero.
func (s *Service) TopVets(ctx context.Context) ([]TopVet, error) {
	all, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]TopVet, 0, len(all))
	for _, v := range all {
		rs, err := s.ratings.ListByVet(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		if len(rs) == 0 {
			continue
		}
		out = append(out, TopVet{Vet: v, Average: Average(rs), Count: len(rs)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > TopVetsLimit {
		out = out[:TopVetsLimit]
	}
	return out, nil
}
