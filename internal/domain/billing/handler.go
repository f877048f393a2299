package billing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/bills", func(br chi.Router) {
		br.Get("/", listBillsHandler(svc))
		br.Post("/", createBillHandler(svc))
		br.Delete("/", deleteAllBillsHandler(svc))

		br.Get("/page", pageBillsHandler(svc))
		br.Get("/count", countBillsHandler(svc))
		br.Get("/paid", listByStatusHandler(svc, StatusPaid))
		br.Get("/unpaid", listByStatusHandler(svc, StatusUnpaid))
		br.Get("/overdue", listByStatusHandler(svc, StatusOverdue))
		br.Get("/month", listByMonthHandler(svc))
		br.Patch("/archive", archiveHandler(svc))

		br.Get("/owner/{firstName}/{lastName}", listHandler(svc, func(r *http.Request) Filter {
			return Filter{OwnerFirstName: chi.URLParam(r, "firstName"), OwnerLastName: chi.URLParam(r, "lastName")}
		}))
		br.Get("/vet/name/{firstName}/{lastName}", listHandler(svc, func(r *http.Request) Filter {
			return Filter{VetFirstName: chi.URLParam(r, "firstName"), VetLastName: chi.URLParam(r, "lastName")}
		}))
		br.Get("/vet/{vetId}", listHandler(svc, func(r *http.Request) Filter {
			return Filter{VetID: chi.URLParam(r, "vetId")}
		}))
		br.Delete("/vet/{vetId}", deleteByVetHandler(svc))
		br.Get("/visitType/{visitType}", listHandler(svc, func(r *http.Request) Filter {
			return Filter{VisitType: chi.URLParam(r, "visitType")}
		}))

		br.Route("/customer/{customerId}", func(cr chi.Router) {
			cr.Get("/", listHandler(svc, func(r *http.Request) Filter {
				return Filter{CustomerID: chi.URLParam(r, "customerId")}
			}))
			cr.Delete("/", deleteByCustomerHandler(svc))

			cr.Get("/bills", customerBillsHandler(svc))
			cr.Get("/bills/current-balance", currentBalanceHandler(svc))
			cr.Post("/bills/{billId}/pay", payHandler(svc))
			cr.Get("/bills/filter-by-amount", filterByAmountHandler(svc))
			cr.Get("/bills/filter-by-due-date", filterByDatesHandler(svc, svc.FilterByDueDate))
			cr.Get("/bills/filter-by-date", filterByDatesHandler(svc, svc.FilterByDate))
		})

		br.Route("/{billId}", func(ir chi.Router) {
			ir.Get("/", getBillHandler(svc))
			ir.Put("/", updateBillHandler(svc))
			ir.Delete("/", deleteBillHandler(svc))
			ir.Patch("/exempt", exemptHandler(svc))
			ir.Get("/interest", interestHandler(svc))
			ir.Get("/total", totalHandler(svc))
		})
	})
}

type billRequest struct {
	CustomerID     string  `json:"customerId"`
	OwnerFirstName string  `json:"ownerFirstName"`
	OwnerLastName  string  `json:"ownerLastName"`
	VetID          string  `json:"vetId"`
	VetFirstName   string  `json:"vetFirstName"`
	VetLastName    string  `json:"vetLastName"`
	VisitType      string  `json:"visitType"`
	Date           string  `json:"date"`    // YYYY-MM-DD opcional
	DueDate        string  `json:"dueDate"` // YYYY-MM-DD opcional
	Amount         float64 `json:"amount"`
	BillStatus     string  `json:"billStatus"`
}

type billResponse struct {
	BillID         string  `json:"billId"`
	CustomerID     string  `json:"customerId"`
	OwnerFirstName string  `json:"ownerFirstName"`
	OwnerLastName  string  `json:"ownerLastName"`
	VetID          string  `json:"vetId"`
	VetFirstName   string  `json:"vetFirstName"`
	VetLastName    string  `json:"vetLastName"`
	VisitType      string  `json:"visitType"`
	Date           string  `json:"date"`
	DueDate        string  `json:"dueDate"`
	Amount         float64 `json:"amount"`
	TaxedAmount    float64 `json:"taxedAmount"`
	BillStatus     Status  `json:"billStatus"`
	TimeRemaining  int     `json:"timeRemaining"`
	InterestExempt bool    `json:"interestExempt"`
	Interest       float64 `json:"interest"`
	Archive        bool    `json:"archive"`
}

type paymentRequest struct {
	CardNumber     string `json:"cardNumber"`
	CVV            string `json:"cvv"`
	ExpirationDate string `json:"expirationDate"`
}

func (req billRequest) parse() (status Status, date, due *time.Time, err error) {
	status, err = ParseStatus(req.BillStatus)
	if err != nil {
		return "", nil, nil, err
	}
	if date, err = parseDate("date", req.Date); err != nil {
		return "", nil, nil, err
	}
	if due, err = parseDate("dueDate", req.DueDate); err != nil {
		return "", nil, nil, err
	}
	return status, date, due, nil
}

func parseDate(field, v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return nil, errors.New(field + " must be YYYY-MM-DD")
	}
	return &t, nil
}

func createBillHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req billRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		status, date, due, err := req.parse()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		b, err := svc.Create(r.Context(), CreateInput{
			CustomerID:     req.CustomerID,
			OwnerFirstName: req.OwnerFirstName,
			OwnerLastName:  req.OwnerLastName,
			VetID:          req.VetID,
			VetFirstName:   req.VetFirstName,
			VetLastName:    req.VetLastName,
			VisitType:      req.VisitType,
			Date:           date,
			DueDate:        due,
			Amount:         req.Amount,
			Status:         status,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toResponse(svc.View(b)))
	}
}

func updateBillHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req billRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		status, date, due, err := req.parse()
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		b, err := svc.Update(r.Context(), chi.URLParam(r, "billId"), UpdateInput{
			CustomerID:     req.CustomerID,
			OwnerFirstName: req.OwnerFirstName,
			OwnerLastName:  req.OwnerLastName,
			VetID:          req.VetID,
			VetFirstName:   req.VetFirstName,
			VetLastName:    req.VetLastName,
			VisitType:      req.VisitType,
			Date:           date,
			DueDate:        due,
			Amount:         req.Amount,
			Status:         status,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(svc.View(b)))
	}
}

func getBillHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(svc.View(b)))
	}
}

func deleteBillHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "billId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		BillID:         q.Get("billId"),
		CustomerID:     q.Get("customerId"),
		OwnerFirstName: q.Get("ownerFirstName"),
		OwnerLastName:  q.Get("ownerLastName"),
		VisitType:      q.Get("visitType"),
		VetID:          q.Get("vetId"),
		VetFirstName:   q.Get("vetFirstName"),
		VetLastName:    q.Get("vetLastName"),
	}
}

func listBillsHandler(svc *Service) http.HandlerFunc {
	return listHandler(svc, filterFromQuery)
}

func listHandler(svc *Service, filter func(*http.Request) Filter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), filter(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func listByStatusHandler(svc *Service, st Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByStatus(r.Context(), st)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func pageBillsHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.Page(r.Context(), filterFromQuery(r), page, size)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func countBillsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context(), filterFromQuery(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, n)
	}
}

func listByMonthHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := respond.QueryInt(r, "year", -1)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		month, err := respond.QueryInt(r, "month", 0)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.ListByMonth(r.Context(), year, month)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func deleteAllBillsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.DeleteAll(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func deleteByVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.DeleteByVet(r.Context(), chi.URLParam(r, "vetId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func deleteByCustomerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.DeleteByCustomer(r.Context(), chi.URLParam(r, "customerId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func exemptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exempt, err := respond.QueryBool(r, "exempt")
		if err != nil || exempt == nil {
			respond.Error(w, http.StatusBadRequest, "exempt must be true or false")
			return
		}
		b, err := svc.SetInterestExempt(r.Context(), chi.URLParam(r, "billId"), *exempt)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(svc.View(b)))
	}
}

func interestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Interest(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, v)
	}
}

func totalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Total(r.Context(), chi.URLParam(r, "billId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, v)
	}
}

func archiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Archive(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func customerBillsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := ParseStatus(r.URL.Query().Get("status"))
		if err != nil {
			writeErr(w, err)
			return
		}
		items, err := svc.CustomerBills(r.Context(), chi.URLParam(r, "customerId"), st)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func currentBalanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.CurrentBalance(r.Context(), chi.URLParam(r, "customerId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, v)
	}
}

func payHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		b, err := svc.Pay(r.Context(), chi.URLParam(r, "customerId"), chi.URLParam(r, "billId"), PaymentInput{
			CardNumber:     req.CardNumber,
			CVV:            req.CVV,
			ExpirationDate: req.ExpirationDate,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(svc.View(b)))
	}
}

func filterByAmountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		min, err := respond.QueryFloat(r, "minAmount")
		if err != nil || min == nil {
			respond.Error(w, http.StatusBadRequest, "minAmount is required")
			return
		}
		max, err := respond.QueryFloat(r, "maxAmount")
		if err != nil || max == nil {
			respond.Error(w, http.StatusBadRequest, "maxAmount is required")
			return
		}
		items, err := svc.FilterByAmount(r.Context(), chi.URLParam(r, "customerId"), *min, *max)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

type dateRangeFunc func(ctx context.Context, customerID string, start, end time.Time) ([]Bill, error)

func filterByDatesHandler(svc *Service, fn dateRangeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := parseDate("startDate", r.URL.Query().Get("startDate"))
		if err != nil || start == nil {
			respond.Error(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		end, err := parseDate("endDate", r.URL.Query().Get("endDate"))
		if err != nil || end == nil {
			respond.Error(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return
		}
		items, err := fn(r.Context(), chi.URLParam(r, "customerId"), *start, *end)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBills(w, svc, items)
	}
}

func writeBills(w http.ResponseWriter, svc *Service, items []Bill) {
	out := make([]billResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toResponse(svc.View(b)))
	}
	respond.JSON(w, http.StatusOK, out)
}

func toResponse(v View) billResponse {
	return billResponse{
		BillID:         v.ID,
		CustomerID:     v.CustomerID,
		OwnerFirstName: v.OwnerFirstName,
		OwnerLastName:  v.OwnerLastName,
		VetID:          v.VetID,
		VetFirstName:   v.VetFirstName,
		VetLastName:    v.VetLastName,
		VisitType:      v.VisitType,
		Date:           v.Date.Format(DateLayout),
		DueDate:        v.DueDate.Format(DateLayout),
		Amount:         v.Amount,
		TaxedAmount:    v.TaxedAmount,
		BillStatus:     v.Status,
		TimeRemaining:  v.TimeRemaining,
		InterestExempt: v.InterestExempt,
		Interest:       v.Interest,
		Archive:        v.Archive,
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
