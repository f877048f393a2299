package inventory

import (
	"errors"
	"net/http"
	"time"

	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/inventory", func(ir chi.Router) {
		ir.Get("/", listInventoriesHandler(svc))
		ir.Post("/", createInventoryHandler(svc))
		ir.Delete("/", deleteAllHandler(svc))
		ir.Get("/page", searchInventoriesHandler(svc))

		ir.Get("/types", listTypesHandler(svc))
		ir.Post("/types", createTypeHandler(svc))
		ir.Get("/types/names", typeNamesHandler(svc))

		ir.Route("/{inventoryId}", func(one chi.Router) {
			one.Get("/", getInventoryHandler(svc))
			one.Put("/", updateInventoryHandler(svc))
			one.Delete("/", deleteInventoryHandler(svc))
			one.Patch("/important", importantHandler(svc))
			one.Get("/productquantity", productQuantityHandler(svc))

			one.Route("/products", func(pr chi.Router) {
				pr.Get("/", listProductsHandler(svc))
				pr.Post("/", addProductHandler(svc))
				pr.Delete("/", deleteProductsHandler(svc))
				pr.Get("/search", listProductsHandler(svc))
				pr.Get("/lowstock", lowStockHandler(svc))
				pr.Get("/recent-updates", recentUpdatesHandler(svc))

				pr.Get("/{productId}", getProductHandler(svc))
				pr.Put("/{productId}", updateProductHandler(svc))
				pr.Delete("/{productId}", deleteProductHandler(svc))
				pr.Patch("/{productId}/consume", consumeHandler(svc))
				pr.Patch("/{productId}/restock", restockHandler(svc))
				pr.Put("/{productId}/move/{newInventoryId}", moveHandler(svc))
			})
		})
	})
}

type inventoryRequest struct {
	InventoryName        string `json:"inventoryName" validate:"required,min=3"`
	InventoryType        string `json:"inventoryType" validate:"required"`
	InventoryDescription string `json:"inventoryDescription" validate:"required"`
	InventoryImage       string `json:"inventoryImage" validate:"omitempty,http_url"`
	InventoryBackupImage string `json:"inventoryBackupImage" validate:"omitempty,http_url"`
	Important            bool   `json:"important"`
}

type inventoryResponse struct {
	InventoryID          string `json:"inventoryId"`
	InventoryName        string `json:"inventoryName"`
	InventoryType        string `json:"inventoryType"`
	InventoryDescription string `json:"inventoryDescription"`
	InventoryImage       string `json:"inventoryImage"`
	InventoryBackupImage string `json:"inventoryBackupImage"`
	Important            bool   `json:"important"`
}

type typeRequest struct {
	Type string `json:"type" validate:"required,min=3"`
}

type typeResponse struct {
	TypeID string `json:"typeId"`
	Type   string `json:"type"`
}

type productRequest struct {
	ProductName        string  `json:"productName" validate:"required"`
	ProductDescription string  `json:"productDescription"`
	ProductPrice       float64 `json:"productPrice" validate:"gt=0"`
	ProductQuantity    int     `json:"productQuantity" validate:"gt=0"`
	ProductSalePrice   float64 `json:"productSalePrice" validate:"gt=0"`
}

type productResponse struct {
	ProductID          string      `json:"productId"`
	InventoryID        string      `json:"inventoryId"`
	ProductName        string      `json:"productName"`
	ProductDescription string      `json:"productDescription"`
	ProductPrice       float64     `json:"productPrice"`
	ProductQuantity    int         `json:"productQuantity"`
	ProductSalePrice   float64     `json:"productSalePrice"`
	Status             StockStatus `json:"status"`
	LastUpdatedAt      time.Time   `json:"lastUpdatedAt"`
}

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

func (req inventoryRequest) input() InventoryInput {
	return InventoryInput{
		Name:        req.InventoryName,
		Type:        req.InventoryType,
		Description: req.InventoryDescription,
		Image:       req.InventoryImage,
		BackupImage: req.InventoryBackupImage,
		Important:   req.Important,
	}
}

func (req productRequest) input() ProductInput {
	return ProductInput{
		Name:        req.ProductName,
		Description: req.ProductDescription,
		Price:       req.ProductPrice,
		Quantity:    req.ProductQuantity,
		SalePrice:   req.ProductSalePrice,
	}
}

func inventoryFilterFromQuery(r *http.Request) (InventoryFilter, error) {
	q := r.URL.Query()
	f := InventoryFilter{
		Name:        q.Get("inventoryName"),
		Type:        q.Get("inventoryType"),
		Description: q.Get("inventoryDescription"),
	}
	important, err := respond.QueryBool(r, "importantOnly")
	if err != nil {
		return f, err
	}
	if important != nil {
		f.ImportantOnly = *important
	}
	return f, nil
}

func listInventoriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := inventoryFilterFromQuery(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeInventories(w, items)
	}
}

func searchInventoriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := inventoryFilterFromQuery(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
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
		items, err := svc.Search(r.Context(), f, page, size)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeInventories(w, items)
	}
}

func createInventoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inventoryRequest
		if !decodeValid(w, r, &req) {
			return
		}
		inv, err := svc.Create(r.Context(), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toInventoryResponse(inv))
	}
}

func getInventoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Get(r.Context(), chi.URLParam(r, "inventoryId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toInventoryResponse(inv))
	}
}

func updateInventoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inventoryRequest
		if !decodeValid(w, r, &req) {
			return
		}
		inv, err := svc.Update(r.Context(), chi.URLParam(r, "inventoryId"), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toInventoryResponse(inv))
	}
}

func deleteInventoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "inventoryId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func deleteAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func importantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Important bool `json:"important"`
		}
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := svc.SetImportant(r.Context(), chi.URLParam(r, "inventoryId"), req.Important)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toInventoryResponse(inv))
	}
}

func listTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListTypes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]typeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, typeResponse{TypeID: t.ID, Type: t.Type})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func createTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req typeRequest
		if !decodeValid(w, r, &req) {
			return
		}
		t, err := svc.CreateType(r.Context(), req.Type)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, typeResponse{TypeID: t.ID, Type: t.Type})
	}
}

func typeNamesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.TypeNames(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, names)
	}
}

func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		st, err := ParseStockStatus(q.Get("status"))
		if err != nil {
			writeErr(w, err)
			return
		}
		items, err := svc.Products(r.Context(), chi.URLParam(r, "inventoryId"), ProductFilter{
			Name:        q.Get("productName"),
			Description: q.Get("productDescription"),
			Status:      st,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeProducts(w, items)
	}
}

func addProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if !decodeValid(w, r, &req) {
			return
		}
		p, err := svc.AddProduct(r.Context(), chi.URLParam(r, "inventoryId"), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toProductResponse(p))
	}
}

func deleteProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProducts(r.Context(), chi.URLParam(r, "inventoryId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func lowStockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold, err := respond.QueryInt(r, "threshold", ReOrderThreshold)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.LowStock(r.Context(), chi.URLParam(r, "inventoryId"), threshold)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeProducts(w, items)
	}
}

func productQuantityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.ProductQuantity(r.Context(), chi.URLParam(r, "inventoryId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func recentUpdatesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := svc.RecentUpdateMessage(r.Context(), chi.URLParam(r, "inventoryId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, msg)
	}
}

func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Product(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId"))
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
		if !decodeValid(w, r, &req) {
			return
		}
		p, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId"), req.input())
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func deleteProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func consumeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Consume(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func restockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qty, err := respond.QueryInt(r, "productQuantity", 0)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.Restock(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId"), qty)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func moveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Move(r.Context(), chi.URLParam(r, "inventoryId"), chi.URLParam(r, "productId"), chi.URLParam(r, "newInventoryId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toProductResponse(p))
	}
}

func writeInventories(w http.ResponseWriter, items []Inventory) {
	out := make([]inventoryResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, toInventoryResponse(inv))
	}
	respond.JSON(w, http.StatusOK, out)
}

func writeProducts(w http.ResponseWriter, items []Product) {
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func toInventoryResponse(inv Inventory) inventoryResponse {
	return inventoryResponse{
		InventoryID:          inv.ID,
		InventoryName:        inv.Name,
		InventoryType:        inv.Type,
		InventoryDescription: inv.Description,
		InventoryImage:       inv.Image,
		InventoryBackupImage: inv.BackupImage,
		Important:            inv.Important,
	}
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ProductID:          p.ID,
		InventoryID:        p.InventoryID,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductPrice:       p.Price,
		ProductQuantity:    p.Quantity,
		ProductSalePrice:   p.SalePrice,
		Status:             p.Status,
		LastUpdatedAt:      p.LastUpdatedAt,
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
