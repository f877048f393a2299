package carts

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
	r.Route("/carts", func(cr chi.Router) {
		cr.Get("/", listCartsHandler(svc))
		cr.Post("/customer/{customerId}/assign", assignHandler(svc))
		cr.Get("/customer/{customerId}", byCustomerHandler(svc))

		cr.Route("/{cartId}", func(one chi.Router) {
			one.Get("/", getCartHandler(svc))
			one.Delete("/", deleteCartHandler(svc))
			one.Delete("/clear", clearHandler(svc))

			one.Post("/products/{productId}", addProductHandler(svc))
			one.Put("/products/{productId}", updateQuantityHandler(svc))
			one.Delete("/products/{productId}", removeProductHandler(svc))

			one.Put("/wishlist/{productId}", addWishlistHandler(svc))
			one.Delete("/wishlist/{productId}", removeWishlistHandler(svc))
			one.Post("/wishlist/moveAll", moveAllHandler(svc))

			one.Post("/checkout", checkoutHandler(svc))
			one.Put("/promo", applyPromoHandler(svc))
		})
	})

	r.Route("/promos", func(pr chi.Router) {
		pr.Get("/", listPromosHandler(svc))
		pr.Post("/", createPromoHandler(svc))
		pr.Get("/active", activePromosHandler(svc))
		pr.Get("/{promoId}", getPromoHandler(svc))
		pr.Put("/{promoId}", updatePromoHandler(svc))
		pr.Delete("/{promoId}", deletePromoHandler(svc))
	})
}

type promoRequest struct {
	Name           string  `json:"name" validate:"required"`
	Code           string  `json:"code" validate:"required"`
	Discount       float64 `json:"discount" validate:"gt=0,max=100"`
	ExpirationDate string  `json:"expirationDate" validate:"required"`
}

func (req promoRequest) input() (PromoInput, error) {
	raw := strings.TrimSpace(req.ExpirationDate)
	exp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// también aceptamos solo fecha: vence al final del día.
		d, derr := time.Parse("2006-01-02", raw)
		if derr != nil {
			return PromoInput{}, errors.New("expirationDate must be RFC3339 or YYYY-MM-DD")
		}
		exp = d.Add(24*time.Hour - time.Second)
	}
	return PromoInput{Name: req.Name, Code: req.Code, Discount: req.Discount, ExpirationDate: exp}, nil
}

func cartOf(r *http.Request) string { return chi.URLParam(r, "cartId") }

// cartHandler ejecuta op y responde con el carrito resultante.
func cartHandler(op func(r *http.Request) (Cart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := op(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, c)
	}
}

func listCartsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, items)
	}
}

func assignHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, created, err := svc.Assign(r.Context(), chi.URLParam(r, "customerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respond.JSON(w, status, c)
	}
}

func byCustomerHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.ByCustomer(r.Context(), chi.URLParam(r, "customerId"))
	})
}

func getCartHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.Get(r.Context(), cartOf(r))
	})
}

func deleteCartHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.Delete(r.Context(), cartOf(r))
	})
}

func clearHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.Clear(r.Context(), cartOf(r))
	})
}

func addProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qty, err := respond.QueryInt(r, "quantity", 1)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		cartHandler(func(r *http.Request) (Cart, error) {
			return svc.AddProduct(r.Context(), cartOf(r), chi.URLParam(r, "productId"), qty)
		})(w, r)
	}
}

func updateQuantityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qty, err := respond.QueryInt(r, "quantity", 0)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		cartHandler(func(r *http.Request) (Cart, error) {
			return svc.UpdateQuantity(r.Context(), cartOf(r), chi.URLParam(r, "productId"), qty)
		})(w, r)
	}
}

func removeProductHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.RemoveProduct(r.Context(), cartOf(r), chi.URLParam(r, "productId"))
	})
}

func addWishlistHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.AddToWishlist(r.Context(), cartOf(r), chi.URLParam(r, "productId"))
	})
}

func removeWishlistHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.RemoveFromWishlist(r.Context(), cartOf(r), chi.URLParam(r, "productId"))
	})
}

func moveAllHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.MoveAllWishlistToCart(r.Context(), cartOf(r))
	})
}

func checkoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Checkout(r.Context(), cartOf(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, inv)
	}
}

func applyPromoHandler(svc *Service) http.HandlerFunc {
	return cartHandler(func(r *http.Request) (Cart, error) {
		return svc.ApplyPromo(r.Context(), cartOf(r), r.URL.Query().Get("code"))
	})
}

func listPromosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPromos(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, items)
	}
}

func activePromosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ActivePromos(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, items)
	}
}

func createPromoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePromo(w, r)
		if !ok {
			return
		}
		p, err := svc.CreatePromo(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, p)
	}
}

func getPromoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPromo(r.Context(), chi.URLParam(r, "promoId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}

func updatePromoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePromo(w, r)
		if !ok {
			return
		}
		p, err := svc.UpdatePromo(r.Context(), chi.URLParam(r, "promoId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}

func deletePromoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePromo(r.Context(), chi.URLParam(r, "promoId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func decodePromo(w http.ResponseWriter, r *http.Request) (PromoInput, bool) {
	var req promoRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return PromoInput{}, false
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return PromoInput{}, false
	}
	in, err := req.input()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return PromoInput{}, false
	}
	return in, true
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
