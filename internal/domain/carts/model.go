package carts

import "time"

// CartProduct es una foto del producto al momento de agregarlo, más la cantidad elegida.
type CartProduct struct {
	ProductID          string  `json:"productId"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductSalePrice   float64 `json:"productSalePrice"`
	QuantityInCart     int     `json:"quantityInCart"`
	AverageRating      float64 `json:"averageRating"`
	ProductQuantity    int     `json:"productQuantity"`
}

type Cart struct {
	ID                     string        `json:"cartId"`
	CustomerID             string        `json:"customerId"`
	Products               []CartProduct `json:"products"`
	WishListProducts       []CartProduct `json:"wishListProducts"`
	RecentPurchases        []CartProduct `json:"recentPurchases"`
	RecommendationPurchase []CartProduct `json:"recommendationPurchase"`
	PromoPercent           float64       `json:"promoPercent"`
}

// RecommendationThreshold: compras acumuladas a partir de las cuales se recomienda un producto.
const RecommendationThreshold = 3

func indexOf(list []CartProduct, productID string) int {
	for i, p := range list {
		if p.ProductID == productID {
			return i
		}
	}
	return -1
}

func remove(list []CartProduct, i int) []CartProduct {
	return append(list[:i:i], list[i+1:]...)
}

type Promo struct {
	ID             string    `json:"promoCodeId"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Discount       float64   `json:"discount"`
	ExpirationDate time.Time `json:"expirationDate"`
}

func (p Promo) Active(now time.Time) bool {
	return p.ExpirationDate.After(now)
}

// Invoice es el resultado de un checkout.
type Invoice struct {
	InvoiceID    string        `json:"invoiceId"`
	CartID       string        `json:"cartId"`
	CustomerID   string        `json:"customerId"`
	Items        []CartProduct `json:"items"`
	Subtotal     float64       `json:"subtotal"`
	PromoPercent float64       `json:"promoPercent"`
	Total        float64       `json:"total"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CheckoutEvent es el payload de cart.checkout.
type CheckoutEvent struct {
	InvoiceID  string  `json:"invoiceId"`
	CartID     string  `json:"cartId"`
	CustomerID string  `json:"customerId"`
	Items      int     `json:"items"`
	Total      float64 `json:"total"`
}
