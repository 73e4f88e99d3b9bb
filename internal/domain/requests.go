package domain

import "time"

type ProductCreateRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	Cost         int64  `json:"cost"`
	InitialStock int    `json:"initialStock"`
}

// ProductUpdateRequest is a partial update. Stock goes through the
// adjustment rule so it always leaves a history entry.
type ProductUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Cost     *int64  `json:"cost,omitempty"`
	Stock    *int    `json:"stock,omitempty"`
}

type StockAdjustRequest struct {
	Stock int `json:"stock"`
}

type StockInRequest struct {
	Date      *time.Time    `json:"date,omitempty"`
	Reference string        `json:"reference"`
	Items     []StockInItem `json:"items"`
}

type SaleItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice *int64 `json:"unitPrice,omitempty"`
}

type SaleRequest struct {
	Items          []SaleItemRequest `json:"items"`
	PaymentMethod  PaymentMethod     `json:"paymentMethod"`
	ContactID      string            `json:"contactId,omitempty"`
	CreditTermDays *int              `json:"creditTermDays,omitempty"`
	DueDate        *time.Time        `json:"dueDate,omitempty"`
	Date           *time.Time        `json:"date,omitempty"`
	PaidAmount     int64             `json:"paidAmount,omitempty"`
}

type PaymentRequest struct {
	Amount int64      `json:"amount"`
	Date   *time.Time `json:"date,omitempty"`
}

type ContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ContactUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type ExpenseRequest struct {
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Category    string     `json:"category"`
	Date        *time.Time `json:"date,omitempty"`
}

type ExpenseUpdateRequest struct {
	Description *string    `json:"description,omitempty"`
	Amount      *int64     `json:"amount,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

type CompanyInfoRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type PreferencesRequest struct {
	Theme      *string `json:"theme,omitempty"`
	Correction *int64  `json:"correction,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	ExpiresAt   string `json:"expiresAt"`
}
