package carts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PromoInput struct {
	Name           string
	Code           string
	Discount       float64
	ExpirationDate time.Time
}

func (s *Service) validatePromo(in *PromoInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Code == "":
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	case in.Discount < 1 || in.Discount > 100:
		return fmt.Errorf("%w: discount must be between 1 and 100", ErrInvalidInput)
	case !in.ExpirationDate.After(s.now()):
		return fmt.Errorf("%w: expirationDate must be in the future", ErrInvalidInput)
	}
	return nil
}

// codeTaken: otro promo (distinto de selfID) ya usa el código.
func (s *Service) codeTaken(ctx context.Context, code, selfID string) error {
	other, err := s.promos.GetByCode(ctx, code)
	switch {
	case err == nil && other.ID != selfID:
		return fmt.Errorf("%w: promo code %s already exists", ErrUnprocessable, code)
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}
	return nil
}

func (s *Service) CreatePromo(ctx context.Context, in PromoInput) (Promo, error) {
	if err := s.validatePromo(&in); err != nil {
		return Promo{}, err
	}
	if err := s.codeTaken(ctx, in.Code, ""); err != nil {
		return Promo{}, err
	}

	p := Promo{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Code:           in.Code,
		Discount:       in.Discount,
		ExpirationDate: in.ExpirationDate.UTC(),
	}
	if err := s.promos.Create(ctx, p); err != nil {
		return Promo{}, err
	}
	return p, nil
}

func (s *Service) GetPromo(ctx context.Context, id string) (Promo, error) {
	if strings.TrimSpace(id) == "" {
		return Promo{}, ErrNotFound
	}
	return s.promos.GetByID(ctx, id)
}

func (s *Service) ListPromos(ctx context.Context) ([]Promo, error) {
	return s.promos.List(ctx)
}

// ActivePromos: los que todavía no vencieron.
func (s *Service) ActivePromos(ctx context.Context) ([]Promo, error) {
	all, err := s.promos.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Promo, 0, len(all))
	for _, p := range all {
		if p.Active(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) UpdatePromo(ctx context.Context, id string, in PromoInput) (Promo, error) {
	p, err := s.GetPromo(ctx, id)
	if err != nil {
		return Promo{}, err
	}
	if err := s.validatePromo(&in); err != nil {
		return Promo{}, err
	}
	if err := s.codeTaken(ctx, in.Code, p.ID); err != nil {
		return Promo{}, err
	}

	p.Name = in.Name
	p.Code = in.Code
	p.Discount = in.Discount
	p.ExpirationDate = in.ExpirationDate.UTC()
	if err := s.promos.Update(ctx, p); err != nil {
		return Promo{}, err
	}
	return p, nil
}

func (s *Service) DeletePromo(ctx context.Context, id string) error {
	if _, err := s.GetPromo(ctx, id); err != nil {
		return err
	}
	return s.promos.Delete(ctx, id)
}
