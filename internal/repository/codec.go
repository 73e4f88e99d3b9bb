package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/store"
)

func decodeState(ctx context.Context, docs []store.Document) (*domain.State, error) {
	st := domain.NewState()
	for _, doc := range docs {
		if err := decodeDocument(st, doc); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", doc.Collection, doc.ID, err)
		}
	}
	if st.Company.NextInvoiceNumber < 1 {
		st.Company.NextInvoiceNumber = 1
	}
	for id, c := range st.Contacts {
		if c.NextInvoiceNumber < 1 {
			c.NextInvoiceNumber = 1
			st.Contacts[id] = c
		}
	}
	logger.Debug(ctx, "tenant state loaded", "documents", len(docs), "products", len(st.Products), "transactions", len(st.Transactions))
	return st, nil
}

func decodeDocument(st *domain.State, doc store.Document) error {
	switch doc.Collection {
	case store.Products:
		var p domain.Product
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			return err
		}
		p.ID = doc.ID
		st.Products[p.ID] = p
	case store.Transactions:
		var t domain.Transaction
		if err := json.Unmarshal(doc.Data, &t); err != nil {
			return err
		}
		t.ID = doc.ID
		st.Transactions[t.ID] = t
	case store.Contacts:
		var c domain.Contact
		if err := json.Unmarshal(doc.Data, &c); err != nil {
			return err
		}
		c.ID = doc.ID
		st.Contacts[c.ID] = c
	case store.Expenses:
		var e domain.Expense
		if err := json.Unmarshal(doc.Data, &e); err != nil {
			return err
		}
		e.ID = doc.ID
		st.Expenses[e.ID] = e
	case store.StockInEntries:
		var entry domain.StockInEntry
		if err := json.Unmarshal(doc.Data, &entry); err != nil {
			return err
		}
		entry.ID = doc.ID
		st.StockIns[entry.ID] = entry
	case store.CompanyInfo:
		switch doc.ID {
		case store.ProfileDocID:
			return json.Unmarshal(doc.Data, &st.Company)
		case store.PreferencesDocID:
			return json.Unmarshal(doc.Data, &st.Preferences)
		}
	}
	return nil
}

func encodeState(st *domain.State) ([]store.Document, error) {
	docs := make([]store.Document, 0, len(st.Products)+len(st.Transactions)+len(st.Contacts)+len(st.Expenses)+len(st.StockIns)+2)
	add := func(collection store.Collection, id string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		docs = append(docs, store.Document{Collection: collection, ID: id, Data: data})
		return nil
	}

	for id, p := range st.Products {
		if err := add(store.Products, id, p); err != nil {
			return nil, err
		}
	}
	for id, t := range st.Transactions {
		if err := add(store.Transactions, id, t); err != nil {
			return nil, err
		}
	}
	for id, c := range st.Contacts {
		if err := add(store.Contacts, id, c); err != nil {
			return nil, err
		}
	}
	for id, e := range st.Expenses {
		if err := add(store.Expenses, id, e); err != nil {
			return nil, err
		}
	}
	for id, entry := range st.StockIns {
		if err := add(store.StockInEntries, id, entry); err != nil {
			return nil, err
		}
	}
	if err := add(store.CompanyInfo, store.ProfileDocID, st.Company); err != nil {
		return nil, err
	}
	if err := add(store.CompanyInfo, store.PreferencesDocID, st.Preferences); err != nil {
		return nil, err
	}
	return docs, nil
}
