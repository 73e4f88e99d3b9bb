package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/assistant"
	"catatkas/backend/internal/domain"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, r, http.StatusTooManyRequests, errors.New("too many attempts"))
		return
	}
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	resp, err := a.auth.Register(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, r, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.ListProducts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeNoContent(w)
}

func (a *API) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req domain.StockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	product, err := a.service.AdjustStock(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleListStockIns(w http.ResponseWriter, r *http.Request) {
	entries, err := a.service.ListStockIns(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stockInEntries": entries})
}

func (a *API) handleCreateStockIn(w http.ResponseWriter, r *http.Request) {
	var req domain.StockInRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	entry, err := a.service.CreateStockIn(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"stockIn": entry})
}

func (a *API) handleDeleteStockIn(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteStockIn(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeNoContent(w)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := a.service.ListSales(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": sales})
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": sale})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSale(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": sale})
}

func (a *API) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	sale, err := a.service.UpdateSale(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": sale})
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeNoContent(w)
}

func (a *API) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	sale, err := a.service.AddPayment(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": sale})
}

func (a *API) handleEditPayment(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req domain.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	sale, err := a.service.EditPayment(r.Context(), r.PathValue("id"), index, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": sale})
}

func (a *API) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	sale, err := a.service.DeletePayment(r.Context(), r.PathValue("id"), index)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": sale})
}

func (a *API) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.service.ListContacts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (a *API) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	contact, err := a.service.CreateContact(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contact": contact})
}

func (a *API) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	contact, err := a.service.UpdateContact(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contact": contact})
}

func (a *API) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteContact(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeNoContent(w)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, err := a.parseDateParam(r, "from")
	if err != nil {
		fail(w, r, err)
		return
	}
	to, err := a.parseDateParam(r, "to")
	if err != nil {
		fail(w, r, err)
		return
	}
	expenses, err := a.service.ListExpenses(r.Context(), from, to)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
}

func (a *API) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	expense, err := a.service.UpdateExpense(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": expense})
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	writeNoContent(w)
}

func (a *API) handleDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := a.service.Debts(r.Context(), strings.TrimSpace(r.URL.Query().Get("contactId")))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debts": debts})
}

func (a *API) handleContactDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := a.service.ContactDebts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": debts})
}

// handleDashboard defaults both bounds to today.
func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	from, err := a.parseDateParam(r, "from")
	if err != nil {
		fail(w, r, err)
		return
	}
	to, err := a.parseDateParam(r, "to")
	if err != nil {
		fail(w, r, err)
		return
	}
	today := a.service.Now()
	if from == nil {
		from = &today
	}
	if to == nil {
		to = &today
	}

	summary, err := a.service.Dashboard(r.Context(), *from, *to)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	info, err := a.service.CompanyInfo(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companyInfo": info})
}

func (a *API) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req domain.CompanyInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	info, err := a.service.UpdateCompanyInfo(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companyInfo": info})
}

func (a *API) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := a.service.Preferences(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

func (a *API) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req domain.PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	prefs, err := a.service.UpdatePreferences(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

func (a *API) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	backup, err := a.service.ExportBackup(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	filename := "catatkas-backup-" + a.service.Now().In(a.service.Location()).Format("20060102") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, backup)
}

func (a *API) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	var backup domain.Backup
	if err := decodeJSON(r, &backup); err != nil {
		fail(w, r, err)
		return
	}
	if err := a.service.ImportBackup(r.Context(), backup); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported":     true,
		"products":     len(backup.Products),
		"transactions": len(backup.Transactions),
	})
}

func (a *API) handleAssistantTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": assistant.Tools()})
}

type toolCallsRequest struct {
	ToolCalls []openai.ToolCall `json:"toolCalls"`
}

// handleAssistantToolCalls runs the model's tool calls and returns the
// tool-role messages to append to the conversation.
func (a *API) handleAssistantToolCalls(w http.ResponseWriter, r *http.Request) {
	var req toolCallsRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if len(req.ToolCalls) == 0 {
		fail(w, r, apperr.Validation("toolCalls must not be empty"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": a.assistant.HandleToolCalls(r.Context(), req.ToolCalls),
	})
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("payment index %q is not a number", raw)
	}
	return index, nil
}

// parseDateParam reads a YYYY-MM-DD query value as midnight in the business
// location. An absent value is nil.
func (a *API) parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, a.service.Location())
	if err != nil {
		return nil, apperr.Validation("%s must be a date like 2006-01-02", name)
	}
	return &t, nil
}
