package repository

import (
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
)

// Tx is the working copy handed to Update. Every Put/Delete changes the copy
// and records the matching document write.
type Tx struct {
	state *domain.State
	batch store.Batch
	err   error
}

// State is the working copy. Read it freely; change it only through Tx.
func (tx *Tx) State() *domain.State {
	return tx.state
}

func (tx *Tx) put(collection store.Collection, id string, value any) {
	if tx.err != nil {
		return
	}
	tx.err = tx.batch.Put(collection, id, value)
}

func (tx *Tx) PutProduct(p domain.Product) {
	tx.state.Products[p.ID] = p
	tx.put(store.Products, p.ID, p)
}

func (tx *Tx) DeleteProduct(id string) {
	delete(tx.state.Products, id)
	tx.batch.Delete(store.Products, id)
}

func (tx *Tx) PutTransaction(t domain.Transaction) {
	tx.state.Transactions[t.ID] = t
	tx.put(store.Transactions, t.ID, t)
}

func (tx *Tx) DeleteTransaction(id string) {
	delete(tx.state.Transactions, id)
	tx.batch.Delete(store.Transactions, id)
}

func (tx *Tx) PutContact(c domain.Contact) {
	tx.state.Contacts[c.ID] = c
	tx.put(store.Contacts, c.ID, c)
}

func (tx *Tx) DeleteContact(id string) {
	delete(tx.state.Contacts, id)
	tx.batch.Delete(store.Contacts, id)
}

func (tx *Tx) PutExpense(e domain.Expense) {
	tx.state.Expenses[e.ID] = e
	tx.put(store.Expenses, e.ID, e)
}

func (tx *Tx) DeleteExpense(id string) {
	delete(tx.state.Expenses, id)
	tx.batch.Delete(store.Expenses, id)
}

func (tx *Tx) PutStockIn(entry domain.StockInEntry) {
	tx.state.StockIns[entry.ID] = entry
	tx.put(store.StockInEntries, entry.ID, entry)
}

func (tx *Tx) DeleteStockIn(id string) {
	delete(tx.state.StockIns, id)
	tx.batch.Delete(store.StockInEntries, id)
}

func (tx *Tx) PutCompany(info domain.CompanyInfo) {
	tx.state.Company = info
	tx.put(store.CompanyInfo, store.ProfileDocID, info)
}

func (tx *Tx) PutPreferences(prefs domain.Preferences) {
	tx.state.Preferences = prefs
	tx.put(store.CompanyInfo, store.PreferencesDocID, prefs)
}
