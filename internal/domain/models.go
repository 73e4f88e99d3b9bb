package domain

import "time"

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCredit   PaymentMethod = "credit"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentTransfer:
		return true
	}
	return false
}

type StockReason string

const (
	StockReasonInitial       StockReason = "initial"
	StockReasonSale          StockReason = "sale"
	StockReasonSaleUpdate    StockReason = "sale_update"
	StockReasonSaleDelete    StockReason = "sale_delete"
	StockReasonAdjustment    StockReason = "adjustment"
	StockReasonStockIn       StockReason = "stock_in"
	StockReasonStockInDelete StockReason = "stock_in_delete"
)

type DebtStatus string

const (
	DebtOverdue  DebtStatus = "overdue"
	DebtDueToday DebtStatus = "due_today"
	DebtUpcoming DebtStatus = "upcoming"
)

type StockHistoryEntry struct {
	ID         string      `json:"id"`
	Date       time.Time   `json:"date"`
	Change     int         `json:"change"`
	Reason     StockReason `json:"reason"`
	Reference  string      `json:"reference,omitempty"`
	StockAfter int         `json:"stockAfter"`
}

type Product struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	Price        int64               `json:"price"`
	Cost         int64               `json:"cost"`
	Stock        int                 `json:"stock"`
	StockHistory []StockHistoryEntry `json:"stockHistory"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

type TransactionItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	UnitCost    int64  `json:"unitCost"`
}

func (i TransactionItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

type Payment struct {
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

type Transaction struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoiceNumber"`
	Items         []TransactionItem `json:"items"`
	TotalAmount   int64             `json:"totalAmount"`
	Date          time.Time         `json:"date"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	ContactID     string            `json:"contactId,omitempty"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
	Payments      []Payment         `json:"payments"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (t Transaction) PaidAmount() int64 {
	var paid int64
	for _, p := range t.Payments {
		paid += p.Amount
	}
	return paid
}

func (t Transaction) Outstanding() int64 {
	return t.TotalAmount - t.PaidAmount()
}

type Contact struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	NextInvoiceNumber int       `json:"nextInvoiceNumber"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

type StockInItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type StockInEntry struct {
	ID        string        `json:"id"`
	Date      time.Time     `json:"date"`
	Reference string        `json:"reference,omitempty"`
	Items     []StockInItem `json:"items"`
}

type CompanyInfo struct {
	Name              string `json:"name"`
	Address           string `json:"address,omitempty"`
	Phone             string `json:"phone,omitempty"`
	NextInvoiceNumber int    `json:"nextInvoiceNumber"`
}

type Preferences struct {
	Theme      string `json:"theme"`
	Correction int64  `json:"correction"`
}

// Backup is the export/import document. It has no version field.
type Backup struct {
	Products       []Product      `json:"products"`
	Transactions   []Transaction  `json:"transactions"`
	Contacts       []Contact      `json:"contacts"`
	Expenses       []Expense      `json:"expenses"`
	CompanyInfo    CompanyInfo    `json:"companyInfo"`
	StockInEntries []StockInEntry `json:"stockInEntries"`
	Theme          string         `json:"theme"`
	Correction     int64          `json:"correction"`
}

type DebtEntry struct {
	TransactionID string     `json:"transactionId"`
	InvoiceNumber string     `json:"invoiceNumber"`
	ContactID     string     `json:"contactId,omitempty"`
	ContactName   string     `json:"contactName,omitempty"`
	Date          time.Time  `json:"date"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	TotalAmount   int64      `json:"totalAmount"`
	PaidAmount    int64      `json:"paidAmount"`
	Outstanding   int64      `json:"outstanding"`
	Status        DebtStatus `json:"status"`
}

type ContactDebt struct {
	ContactID    string     `json:"contactId"`
	ContactName  string     `json:"contactName"`
	Outstanding  int64      `json:"outstanding"`
	OpenCount    int        `json:"openCount"`
	OverdueCount int        `json:"overdueCount"`
	OldestDue    *time.Time `json:"oldestDue,omitempty"`
}

type LowStockProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

type DashboardSummary struct {
	From             string            `json:"from"`
	To               string            `json:"to"`
	SalesTotal       int64             `json:"salesTotal"`
	TransactionCount int               `json:"transactionCount"`
	CostOfGoodsSold  int64             `json:"costOfGoodsSold"`
	GrossProfit      int64             `json:"grossProfit"`
	GrossMarginPct   string            `json:"grossMarginPct"`
	ExpensesTotal    int64             `json:"expensesTotal"`
	NetProfit        int64             `json:"netProfit"`
	CashReceived     int64             `json:"cashReceived"`
	Receivables      int64             `json:"receivables"`
	Correction       int64             `json:"correction"`
	LowStock         []LowStockProduct `json:"lowStock"`
}

type Actor struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
