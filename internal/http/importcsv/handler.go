package importcsv

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/http/request"
	"github.com/tiammomo/mamoji/internal/http/respond"
	"github.com/tiammomo/mamoji/internal/importer"
	"github.com/tiammomo/mamoji/internal/importer/bill"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Post("/", h.importBill)
	r.Get("/export", h.exportCSV)
}

type recordResponse struct {
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	Category   string           `json:"category,omitempty"`
	Note       string           `json:"note,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type previewResponse struct {
	Count   int              `json:"count"`
	Records []recordResponse `json:"records"`
}

// billFile pulls the uploaded bill out of the multipart form. Writes the
// error response itself when the upload is missing.
func billFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return nil, false
	}

	return file, true
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	file, ok := billFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	records, err := h.svc.Preview(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respond.JSON(w, http.StatusOK, toPreviewResponse(records))
}

type importResultResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (h *Handler) importBill(w http.ResponseWriter, r *http.Request) {
	file, ok := billFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	opts := importer.ImportOptions{}

	var err error

	opts.AccountID, err = uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		http.Error(w, "account_id field is required", http.StatusBadRequest)
		return
	}

	if s := r.FormValue("default_expense_category_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			opts.DefaultExpenseCategoryID = id
		}
	}

	if s := r.FormValue("default_income_category_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			opts.DefaultIncomeCategoryID = id
		}
	}

	ledgerID, err := request.LedgerID(r)
	if err != nil {
		http.Error(w, "invalid ledger id", http.StatusBadRequest)
		return
	}

	opts.LedgerID = ledgerID

	result, err := h.svc.Import(r.Context(), request.UserID(r.Context()), opts, file)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResultResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("type"); s != "" {
		typ := transaction.Type(s)
		filter.Type = &typ
	}

	if s := q.Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.From = &t
		}
	}

	if s := q.Get("to"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.To = &t
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if err := h.svc.ExportCSV(r.Context(), request.UserID(r.Context()), filter, w); err != nil {
		respond.Err(w, err)
		return
	}
}

func toPreviewResponse(records []bill.Record) previewResponse {
	resp := previewResponse{
		Count:   len(records),
		Records: make([]recordResponse, len(records)),
	}

	for i, rec := range records {
		resp.Records[i] = recordResponse{
			Type:       rec.Type,
			Amount:     rec.Amount,
			Category:   rec.Category,
			Note:       rec.Note,
			OccurredAt: rec.OccurredAt,
		}
	}

	return resp
}
