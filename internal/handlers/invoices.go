package handlers

import (
	"net/http"
	"strconv"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type listResp struct {
	Invoices []invoiceResponse   `json:"invoices"`
	Months   []models.Month      `json:"months"`
	Summary  models.SummaryStats `json:"summary_stats"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type detailResp struct {
	invoiceResponse
	DaysDiff       *int `json:"days_diff"`
	DaysMinusDhara *int `json:"days_minus_dhara"`
}

// createResp echoes firm and quality so a client can pre-fill the next form.
type createResp struct {
	Invoice      invoiceResponse   `json:"invoice"`
	NextDefaults map[string]string `json:"next_defaults"`
}

type settleRequest struct {
	Amount string `json:"amount"`
}

func (h *Handlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := models.InvoiceFilter{
		Month:       q.Get("month"),
		PartySearch: q.Get("party_search"),
		Status:      models.PaymentStatus(q.Get("payment_status")),
	}
	if f.Month != "" {
		if _, err := utils.ParseMonth(f.Month); err != nil {
			h.Error(w, r, err)
			return
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	res, err := h.Invoices.List(r.Context(), owner, f)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	out := listResp{
		Invoices: make([]invoiceResponse, 0, len(res.Invoices)),
		Months:   res.Months,
		Summary:  res.Summary,
		Page:     res.Filter.Page,
		PageSize: res.Filter.PageSize,
	}
	for i := range res.Invoices {
		out.Invoices = append(out.Invoices, toResponse(&res.Invoices[i]))
	}
	h.JSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req invoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "bad JSON: " + err.Error()})
		return
	}
	fields, err := req.fields()
	if err != nil {
		h.Error(w, r, err)
		return
	}

	inv, err := h.Invoices.Create(r.Context(), owner, fields)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusCreated, createResp{
		Invoice:      toResponse(inv),
		NextDefaults: map[string]string{"firm": inv.Firm, "quality": inv.Quality},
	})
}

func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	d, err := h.Invoices.Get(r.Context(), owner, id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, detailResp{
		invoiceResponse: toResponse(d.Invoice),
		DaysDiff:        d.DaysDiff,
		DaysMinusDhara:  d.DaysMinusDhara,
	})
}

func (h *Handlers) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	var req invoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "bad JSON: " + err.Error()})
		return
	}
	fields, err := req.fields()
	if err != nil {
		h.Error(w, r, err)
		return
	}

	inv, err := h.Invoices.Update(r.Context(), owner, id, fields)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handlers) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}
	if err := h.Invoices.Delete(r.Context(), owner, id); err != nil {
		h.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SettlePayment1(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Invoices.SettlePayment1)
}

func (h *Handlers) SettlePayment2(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Invoices.SettlePayment2)
}

func (h *Handlers) settle(w http.ResponseWriter, r *http.Request, apply settleFunc) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	var req settleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "bad JSON: " + err.Error()})
		return
	}
	amount, err := utils.ParseIndianNumber(req.Amount)
	if err != nil {
		h.JSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Fields: map[string]string{"amount": err.Error()}})
		return
	}

	inv, err := apply(r.Context(), owner, id, amount)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, toResponse(inv))
}

// ownerAndID rejects ids that cannot exist before the store sees them.
func (h *Handlers) ownerAndID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	owner, ok := h.owner(w, r)
	if !ok {
		return "", "", false
	}
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		h.Error(w, r, ledger.ErrNotFound)
		return "", "", false
	}
	return owner, id, true
}
