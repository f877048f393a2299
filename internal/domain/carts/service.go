package carts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petclinic/internal/platform/money"
	"petclinic/internal/ports/catalog"
	"petclinic/internal/ports/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable")
)

type Service struct {
	repo    Repository
	promos  PromoRepository
	catalog catalog.Catalog
	pub     events.Publisher
	now     func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func NewService(repo Repository, promos PromoRepository, cat catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		promos:  promos,
		catalog: cat,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if strings.TrimSpace(id) == "" {
		return Cart{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Cart, error) {
	return s.repo.List(ctx)
}

func (s *Service) ByCustomer(ctx context.Context, customerID string) (Cart, error) {
	if strings.TrimSpace(customerID) == "" {
		return Cart{}, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	return s.repo.GetByCustomer(ctx, customerID)
}

// Assign devuelve el carrito del cliente o crea uno vacío.
func (s *Service) Assign(ctx context.Context, customerID string) (Cart, bool, error) {
	c, err := s.ByCustomer(ctx, customerID)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Cart{}, false, err
	}

	c = Cart{
		ID:                     uuid.NewString(),
		CustomerID:             strings.TrimSpace(customerID),
		Products:               []CartProduct{},
		WishListProducts:       []CartProduct{},
		RecentPurchases:        []CartProduct{},
		RecommendationPurchase: []CartProduct{},
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Cart{}, false, err
	}
	return c, true, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Clear vacía los productos (no toca wishlist ni historial).
func (s *Service) Clear(ctx context.Context, id string) (Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	c.Products = []CartProduct{}
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) product(ctx context.Context, productID string) (catalog.Product, error) {
	p, err := s.catalog.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func snapshot(p catalog.Product, qty int) CartProduct {
	return CartProduct{
		ProductID:          p.ID,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductSalePrice:   p.SalePrice,
		QuantityInCart:     qty,
		AverageRating:      p.AverageRating,
		ProductQuantity:    p.Quantity,
	}
}

// stockError es un ErrInvalidInput cuyo texto llega tal cual al cliente.
type stockError struct{ msg string }

func (e *stockError) Error() string { return e.msg }

func (e *stockError) Is(target error) bool { return target == ErrInvalidInput }

func checkStock(p catalog.Product, wanted int) error {
	if p.Quantity <= 0 {
		return &stockError{msg: fmt.Sprintf("%s is out of stock.", p.Name)}
	}
	if wanted > p.Quantity {
		return &stockError{msg: fmt.Sprintf("You cannot add more than %d items. Only %d items left in stock.", p.Quantity, p.Quantity)}
	}
	return nil
}

// AddProduct suma quantity al carrito validando stock. Si estaba en la wishlist, sale de ahí.
func (s *Service) AddProduct(ctx context.Context, cartID, productID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidInput)
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	inCart := 0
	i := indexOf(c.Products, p.ID)
	if i >= 0 {
		inCart = c.Products[i].QuantityInCart
	}
	if err := checkStock(p, inCart+quantity); err != nil {
		return Cart{}, err
	}

	if i >= 0 {
		c.Products[i] = snapshot(p, inCart+quantity)
	} else {
		c.Products = append(c.Products, snapshot(p, quantity))
	}
	if w := indexOf(c.WishListProducts, p.ID); w >= 0 {
		c.WishListProducts = remove(c.WishListProducts, w)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// UpdateQuantity reemplaza la cantidad de un producto que ya está en el carrito.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidInput)
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i := indexOf(c.Products, productID)
	if i < 0 {
		return Cart{}, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if err := checkStock(p, quantity); err != nil {
		return Cart{}, err
	}

	c.Products[i] = snapshot(p, quantity)
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) RemoveProduct(ctx context.Context, cartID, productID string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i := indexOf(c.Products, productID)
	if i < 0 {
		return Cart{}, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
	}
	c.Products = remove(c.Products, i)
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// -------------------------
// Wishlist
// -------------------------

func (s *Service) AddToWishlist(ctx context.Context, cartID, productID string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if indexOf(c.WishListProducts, productID) >= 0 {
		return c, nil
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	c.WishListProducts = append(c.WishListProducts, snapshot(p, 1))
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, cartID, productID string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	i := indexOf(c.WishListProducts, productID)
	if i < 0 {
		return Cart{}, fmt.Errorf("%w: product %s is not in the wishlist", ErrNotFound, productID)
	}
	c.WishListProducts = remove(c.WishListProducts, i)
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// MoveAllWishlistToCart pasa al carrito (1 unidad) lo que tenga stock. El resto queda en la wishlist.
func (s *Service) MoveAllWishlistToCart(ctx context.Context, cartID string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}

	keep := make([]CartProduct, 0, len(c.WishListProducts))
	for _, w := range c.WishListProducts {
		p, err := s.product(ctx, w.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Cart{}, err
		}

		i := indexOf(c.Products, p.ID)
		inCart := 0
		if i >= 0 {
			inCart = c.Products[i].QuantityInCart
		}
		if checkStock(p, inCart+1) != nil {
			keep = append(keep, snapshot(p, w.QuantityInCart))
			continue
		}
		if i >= 0 {
			c.Products[i] = snapshot(p, inCart+1)
		} else {
			c.Products = append(c.Products, snapshot(p, 1))
		}
	}
	c.WishListProducts = keep

	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// -------------------------
// Checkout
// -------------------------

// Checkout factura el carrito, actualiza historial y recomendaciones y lo vacía.
func (s *Service) Checkout(ctx context.Context, cartID string) (Invoice, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Invoice{}, err
	}
	if len(c.Products) == 0 {
		return Invoice{}, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}

	subtotal := 0.0
	for _, p := range c.Products {
		subtotal += p.ProductSalePrice * float64(p.QuantityInCart)
	}
	inv := Invoice{
		InvoiceID:    uuid.NewString(),
		CartID:       c.ID,
		CustomerID:   c.CustomerID,
		Items:        c.Products,
		Subtotal:     money.Round2(subtotal),
		PromoPercent: c.PromoPercent,
		Total:        money.Round2(subtotal * (1 - c.PromoPercent/100)),
		CreatedAt:    s.now(),
	}

	for _, p := range c.Products {
		if i := indexOf(c.RecentPurchases, p.ProductID); i >= 0 {
			p.QuantityInCart += c.RecentPurchases[i].QuantityInCart
			c.RecentPurchases[i] = p
		} else {
			c.RecentPurchases = append(c.RecentPurchases, p)
		}
	}
	c.RecommendationPurchase = make([]CartProduct, 0)
	for _, p := range c.RecentPurchases {
		if p.QuantityInCart >= RecommendationThreshold {
			c.RecommendationPurchase = append(c.RecommendationPurchase, p)
		}
	}
	c.Products = []CartProduct{}
	c.PromoPercent = 0

	if err := s.repo.Update(ctx, c); err != nil {
		return Invoice{}, err
	}

	_ = events.Publish(ctx, s.pub, events.CartCheckout, c.ID, CheckoutEvent{
		InvoiceID:  inv.InvoiceID,
		CartID:     c.ID,
		CustomerID: c.CustomerID,
		Items:      len(inv.Items),
		Total:      inv.Total,
	}, inv.CreatedAt)
	return inv, nil
}

// ApplyPromo aplica el descuento de un código vigente.
func (s *Service) ApplyPromo(ctx context.Context, cartID, code string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Cart{}, fmt.Errorf("%w: promo code is required", ErrInvalidInput)
	}
	p, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Cart{}, fmt.Errorf("%w: invalid promo code", ErrInvalidInput)
		}
		return Cart{}, err
	}
	if !p.Active(s.now()) {
		return Cart{}, fmt.Errorf("%w: promo code has expired", ErrInvalidInput)
	}

	c.PromoPercent = p.Discount
	if err := s.repo.Update(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
