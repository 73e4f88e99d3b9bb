// Package assistant is the boundary between a conversational agent and the
// bookkeeping service. Tool calls are decoded into typed commands, validated,
// and executed; every outcome comes back as a Result payload.
package assistant

import (
	"bytes"
	"encoding/json"
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

const (
	ToolAddSale       = "add_sale"
	ToolAddPayment    = "add_payment"
	ToolUpdateProduct = "update_product"
)

// Command is one of AddSale, AddPayment or UpdateProduct.
type Command interface {
	Tool() string
	Validate() error
}

type SaleLine struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

type AddSale struct {
	Items          []SaleLine           `json:"items"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod"`
	ContactName    string               `json:"contactName,omitempty"`
	CreditTermDays *int                 `json:"creditTermDays,omitempty"`
}

func (AddSale) Tool() string { return ToolAddSale }

func (c AddSale) Validate() error {
	if len(c.Items) == 0 {
		return apperr.Validation("a sale needs at least one item")
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.ProductName) == "" {
			return apperr.Validation("item %d: product name is required", i+1)
		}
		if item.Quantity <= 0 {
			return apperr.Validation("item %d: quantity for %q must be at least 1", i+1, item.ProductName)
		}
	}
	if !c.PaymentMethod.Valid() {
		return apperr.Validation("payment method must be cash, credit or transfer")
	}
	if c.PaymentMethod == domain.PaymentCredit && strings.TrimSpace(c.ContactName) == "" {
		return apperr.Validation("a credit sale needs a contact name")
	}
	if c.CreditTermDays != nil && *c.CreditTermDays <= 0 {
		return apperr.Validation("credit term must be at least one day")
	}
	return nil
}

type AddPayment struct {
	ContactName string `json:"contactName"`
	Amount      int64  `json:"amount"`
}

func (AddPayment) Tool() string { return ToolAddPayment }

func (c AddPayment) Validate() error {
	if strings.TrimSpace(c.ContactName) == "" {
		return apperr.Validation("contact name is required")
	}
	if c.Amount <= 0 {
		return apperr.Validation("payment amount must be greater than zero")
	}
	return nil
}

type UpdateProduct struct {
	ProductName string  `json:"productName"`
	Name        *string `json:"name,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Cost        *int64  `json:"cost,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}

func (UpdateProduct) Tool() string { return ToolUpdateProduct }

func (c UpdateProduct) Validate() error {
	if strings.TrimSpace(c.ProductName) == "" {
		return apperr.Validation("product name is required")
	}
	if c.Name == nil && c.Price == nil && c.Cost == nil && c.Stock == nil {
		return apperr.Validation("nothing to update for %q", c.ProductName)
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return apperr.Validation("new product name must not be empty")
	}
	if (c.Price != nil && *c.Price < 0) || (c.Cost != nil && *c.Cost < 0) {
		return apperr.Validation("price and cost must not be negative")
	}
	if c.Stock != nil && *c.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	return nil
}

// Decode turns a tool name and its JSON arguments into a validated command.
func Decode(tool string, arguments string) (Command, error) {
	var cmd Command
	switch tool {
	case ToolAddSale:
		var c AddSale
		if err := decodeArgs(arguments, &c); err != nil {
			return nil, err
		}
		cmd = c
	case ToolAddPayment:
		var c AddPayment
		if err := decodeArgs(arguments, &c); err != nil {
			return nil, err
		}
		cmd = c
	case ToolUpdateProduct:
		var c UpdateProduct
		if err := decodeArgs(arguments, &c); err != nil {
			return nil, err
		}
		cmd = c
	default:
		return nil, apperr.Validation("unknown tool %q", tool)
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func decodeArgs(arguments string, dst any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	decoder := json.NewDecoder(bytes.NewBufferString(arguments))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperr.Validation("invalid tool arguments: %v", err)
	}
	return nil
}
