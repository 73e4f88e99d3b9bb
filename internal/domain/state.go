package domain

import (
	"sort"
	"strings"
)

// State is everything one tenant owns. The repository keeps one State per
// tenant in memory and hands out clones.
type State struct {
	Products     map[string]Product
	Transactions map[string]Transaction
	Contacts     map[string]Contact
	Expenses     map[string]Expense
	StockIns     map[string]StockInEntry
	Company      CompanyInfo
	Preferences  Preferences
}

func NewState() *State {
	return &State{
		Products:     make(map[string]Product),
		Transactions: make(map[string]Transaction),
		Contacts:     make(map[string]Contact),
		Expenses:     make(map[string]Expense),
		StockIns:     make(map[string]StockInEntry),
		Company:      CompanyInfo{NextInvoiceNumber: 1},
		Preferences:  Preferences{Theme: "light"},
	}
}

func (s *State) Clone() *State {
	out := &State{
		Products:     make(map[string]Product, len(s.Products)),
		Transactions: make(map[string]Transaction, len(s.Transactions)),
		Contacts:     make(map[string]Contact, len(s.Contacts)),
		Expenses:     make(map[string]Expense, len(s.Expenses)),
		StockIns:     make(map[string]StockInEntry, len(s.StockIns)),
		Company:      s.Company,
		Preferences:  s.Preferences,
	}
	for id, p := range s.Products {
		out.Products[id] = CloneProduct(p)
	}
	for id, tx := range s.Transactions {
		out.Transactions[id] = CloneTransaction(tx)
	}
	for id, c := range s.Contacts {
		out.Contacts[id] = c
	}
	for id, e := range s.Expenses {
		out.Expenses[id] = e
	}
	for id, entry := range s.StockIns {
		entry.Items = append([]StockInItem(nil), entry.Items...)
		out.StockIns[id] = entry
	}
	return out
}

func CloneProduct(p Product) Product {
	p.StockHistory = append([]StockHistoryEntry(nil), p.StockHistory...)
	return p
}

func CloneTransaction(tx Transaction) Transaction {
	tx.Items = append([]TransactionItem(nil), tx.Items...)
	tx.Payments = append([]Payment(nil), tx.Payments...)
	if tx.DueDate != nil {
		due := *tx.DueDate
		tx.DueDate = &due
	}
	return tx
}

func (s *State) ProductList() []Product {
	out := make([]Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, CloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return cmpFold(out[i].Name, out[j].Name, out[i].ID, out[j].ID)
	})
	return out
}

// TransactionList returns transactions newest first.
func (s *State) TransactionList() []Transaction {
	out := make([]Transaction, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		out = append(out, CloneTransaction(tx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *State) ContactList() []Contact {
	out := make([]Contact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return cmpFold(out[i].Name, out[j].Name, out[i].ID, out[j].ID)
	})
	return out
}

// ExpenseList returns expenses newest first.
func (s *State) ExpenseList() []Expense {
	out := make([]Expense, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *State) StockInList() []StockInEntry {
	out := make([]StockInEntry, 0, len(s.StockIns))
	for _, entry := range s.StockIns {
		entry.Items = append([]StockInItem(nil), entry.Items...)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *State) Backup() Backup {
	return Backup{
		Products:       s.ProductList(),
		Transactions:   s.TransactionList(),
		Contacts:       s.ContactList(),
		Expenses:       s.ExpenseList(),
		CompanyInfo:    s.Company,
		StockInEntries: s.StockInList(),
		Theme:          s.Preferences.Theme,
		Correction:     s.Preferences.Correction,
	}
}

func cmpFold(a, b, idA, idB string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return idA < idB
}
