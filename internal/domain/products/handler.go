package products

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", listProductsHandler(svc))
		pr.Post("/", createProductHandler(svc))

		pr.Get("/type/{productType}", listByTypeHandler(svc))
		pr.Get("/subscriptions/{customerId}", customerSubscriptionsHandler(svc))

		pr.Route("/bundles", func(br chi.Router) {
			br.Get("/", listBundlesHandler(svc))
			br.Post("/", createBundleHandler(svc))
			br.Delete("/product/{productId}", deleteBundlesWithProductHandler(svc))
			br.Get("/{bundleId}", getBundleHandler(svc))
			br.Put("/{bundleId}", updateBundleHandler(svc))
			br.Delete("/{bundleId}", deleteBundleHandler(svc))
		})

		pr.Route("/{productId}", func(one chi.Router) {
			one.Get("/", getProductHandler(svc))
			one.Put("/", updateProductHandler(svc))
			one.Delete("/", deleteProductHandler(svc))
			one.Patch("/", requestCountHandler(svc))
			one.Patch("/status", listingStatusHandler(svc))
			one.Patch("/decrease", decreaseHandler(svc))
			one.Patch("/quantity", setQuantityHandler(svc))

			one.Get("/subscriptions/{customerId}", getSubscriptionHandler(svc))
			one.Post("/subscriptions/{customerId}", subscribeHandler(svc))
			one.Put("/subscriptions/{customerId}", updateSubscriptionHandler(svc))
			one.Delete("/subscriptions/{customerId}", unsubscribeHandler(svc))
		})
	})

	r.Route("/ratings/{productId}", func(rr chi.Router) {
		rr.Get("/", listRatingsHandler(svc))
		rr.Get("/{customerId}", getRatingHandler(svc))
		rr.Post("/{customerId}", addRatingHandler(svc))
		rr.Put("/{customerId}", updateRatingHandler(svc))
		rr.Delete("/{customerId}", deleteRatingHandler(svc))
	})
}

type productRequest struct {
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductSalePrice   float64 `json:"productSalePrice"`
	ProductQuantity    int     `json:"productQuantity"`
	ProductType        string  `json:"productType"`
	ReleaseDate        string  `json:"releaseDate"` // YYYY-MM-DD opcional
	IsUnlisted         bool    `json:"isUnlisted"`
	DeliveryType       string  `json:"deliveryType"`
}

type productResponse struct {
	ProductID          string  `json:"productId"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductSalePrice   float64 `json:"productSalePrice"`
	AverageRating      float64 `json:"averageRating"`
	ProductQuantity    int     `json:"productQuantity"`
	ProductType        string  `json:"productType"`
	ProductStatus      Status  `json:"productStatus"`
	ReleaseDate        string  `json:"releaseDate,omitempty"`
	IsUnlisted         bool    `json:"isUnlisted"`
	RequestCount       int     `json:"requestCount"`
	DeliveryType       string  `json:"deliveryType"`
}

type bundleRequest struct {
	BundleName        string   `json:"bundleName"`
	BundleDescription string   `json:"bundleDescription"`
	ProductIDs        []string `json:"productIds"`
	BundlePrice       float64  `json:"bundlePrice"`
}

type bundleResponse struct {
	BundleID           string   `json:"bundleId"`
	BundleName         string   `json:"bundleName"`
	BundleDescription  string   `json:"bundleDescription"`
	ProductIDs         []string `json:"productIds"`
	OriginalTotalPrice float64  `json:"originalTotalPrice"`
	BundlePrice        float64  `json:"bundlePrice"`
}

type ratingRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type ratingResponse struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
}

type subscriptionRequest struct {
	Email            string   `json:"email"`
	NotificationType []string `json:"notificationType"`
}

type subscriptionResponse struct {
	ProductID        string             `json:"productId"`
	CustomerID       string             `json:"customerId"`
	Email            string             `json:"email"`
	NotificationType []NotificationType `json:"notificationType"`
}

func (req productRequest) input() (ProductInput, error) {
	in := ProductInput{
		Name:         req.ProductName,
		Description:  req.ProductDescription,
		SalePrice:    req.ProductSalePrice,
		Quantity:     req.ProductQuantity,
		Type:         req.ProductType,
		IsUnlisted:   req.IsUnlisted,
		DeliveryType: req.DeliveryType,
	}
	if strings.TrimSpace(req.ReleaseDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(req.ReleaseDate))
		if err != nil {
			return ProductInput{}, errors.New("releaseDate must be YYYY-MM-DD")
		}
		in.ReleaseDate = &t
	}
	return in, nil
}

func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilter
		var err error
		for key, dst := range map[string]**float64{
			"minPrice":  &f.MinPrice,
			"maxPrice":  &f.MaxPrice,
			"minRating": &f.MinRating,
			"maxRating": &f.MaxRating,
		} {
			if *dst, err = respond.QueryFloat(r, key); err != nil {
				respond.Error(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		f.Sort = r.URL.Query().Get("sort")
		f.DeliveryType = r.URL.Query().Get("deliveryType")

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeProducts(w, items)
	}
}

func createProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.Create(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toProductResponse(p))
	}
}

func listByTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByType(r.Context(), chi.URLParam(r, "productType"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeProducts(w, items)
	}
}

func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func updateProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		in, err := req.input()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.Update(r.Context(), chi.URLParam(r, "productId"), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func deleteProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Delete(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func requestCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.RequestCount(r.Context(), chi.URLParam(r, "productId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func listingStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IsUnlisted bool `json:"isUnlisted"`
		}
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.SetListingStatus(r.Context(), chi.URLParam(r, "productId"), req.IsUnlisted)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func decreaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.Decrease(r.Context(), chi.URLParam(r, "productId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func setQuantityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductQuantity int `json:"productQuantity"`
		}
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := svc.SetQuantity(r.Context(), chi.URLParam(r, "productId"), req.ProductQuantity); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func listBundlesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListBundles(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]bundleResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toBundleResponse(b))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func createBundleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bundleRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		b, err := svc.CreateBundle(r.Context(), BundleInput{
			Name:        req.BundleName,
			Description: req.BundleDescription,
			ProductIDs:  req.ProductIDs,
			BundlePrice: req.BundlePrice,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toBundleResponse(b))
	}
}

func getBundleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.GetBundle(r.Context(), chi.URLParam(r, "bundleId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toBundleResponse(b))
	}
}

func updateBundleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bundleRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		b, err := svc.UpdateBundle(r.Context(), chi.URLParam(r, "bundleId"), BundleInput{
			Name:        req.BundleName,
			Description: req.BundleDescription,
			ProductIDs:  req.ProductIDs,
			BundlePrice: req.BundlePrice,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toBundleResponse(b))
	}
}

func deleteBundleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteBundle(r.Context(), chi.URLParam(r, "bundleId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func deleteBundlesWithProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.DeleteBundlesWithProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func listRatingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Ratings(r.Context(), chi.URLParam(r, "productId"))
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

func getRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, err := svc.Rating(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRatingResponse(rt))
	}
}

func addRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ratingRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		rt, err := svc.AddRating(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"), RatingInput{Rating: req.Rating, Review: req.Review})
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
		rt, err := svc.UpdateRating(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"), RatingInput{Rating: req.Rating, Review: req.Review})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRatingResponse(rt))
	}
}

func deleteRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteRating(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func customerSubscriptionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.CustomerSubscriptions(r.Context(), chi.URLParam(r, "customerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]subscriptionResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toSubscriptionResponse(s))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getSubscriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.Subscription(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toSubscriptionResponse(sub))
	}
}

func subscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		sub, err := svc.Subscribe(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"), SubscriptionInput{
			Email:            req.Email,
			NotificationType: req.NotificationType,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toSubscriptionResponse(sub))
	}
}

func updateSubscriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		sub, err := svc.UpdateSubscription(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId"), SubscriptionInput{
			Email:            req.Email,
			NotificationType: req.NotificationType,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toSubscriptionResponse(sub))
	}
}

func unsubscribeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Unsubscribe(r.Context(), chi.URLParam(r, "productId"), chi.URLParam(r, "customerId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func writeProducts(w http.ResponseWriter, items []Product) {
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func toProductResponse(p Product) productResponse {
	resp := productResponse{
		ProductID:          p.ID,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductSalePrice:   p.SalePrice,
		AverageRating:      p.AverageRating,
		ProductQuantity:    p.Quantity,
		ProductType:        p.Type,
		ProductStatus:      p.Status,
		IsUnlisted:         p.IsUnlisted,
		RequestCount:       p.RequestCount,
		DeliveryType:       p.DeliveryType,
	}
	if p.ReleaseDate != nil {
		resp.ReleaseDate = p.ReleaseDate.Format("2006-01-02")
	}
	return resp
}

func toBundleResponse(b Bundle) bundleResponse {
	ids := b.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	return bundleResponse{
		BundleID:           b.ID,
		BundleName:         b.Name,
		BundleDescription:  b.Description,
		ProductIDs:         ids,
		OriginalTotalPrice: b.OriginalTotalPrice,
		BundlePrice:        b.BundlePrice,
	}
}

func toRatingResponse(r Rating) ratingResponse {
	return ratingResponse{ProductID: r.ProductID, CustomerID: r.CustomerID, Rating: r.Rating, Review: r.Review}
}

func toSubscriptionResponse(s Subscription) subscriptionResponse {
	return subscriptionResponse{
		ProductID:        s.ProductID,
		CustomerID:       s.CustomerID,
		Email:            s.Email,
		NotificationType: s.NotificationType,
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
