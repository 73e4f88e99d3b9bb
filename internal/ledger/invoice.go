package ledger

import (
	"fmt"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/xid"
)

const (
	invoicePrefix       = "INV"
	walkInPadWidth      = 5
	contactInvoiceWidth = 4
)

// assignInvoiceNumber takes the next number from the contact's counter, or
// from the company counter for walk-in sales, and returns the bumped counter
// owner so it is saved in the same batch as the sale. Numbers already used
// (for example by imported data) are skipped.
func assignInvoiceNumber(st *domain.State, contactID string) (string, *domain.Contact, *domain.CompanyInfo) {
	used := make(map[string]struct{}, len(st.Transactions))
	for _, tx := range st.Transactions {
		used[tx.InvoiceNumber] = struct{}{}
	}

	if contactID != "" {
		contact := st.Contacts[contactID]
		n := max(contact.NextInvoiceNumber, 1)
		number := contactInvoice(contact.ID, n)
		for isUsed(used, number) {
			n++
			number = contactInvoice(contact.ID, n)
		}
		contact.NextInvoiceNumber = n + 1
		return number, &contact, nil
	}

	company := st.Company
	n := max(company.NextInvoiceNumber, 1)
	number := walkInInvoice(n)
	for isUsed(used, number) {
		n++
		number = walkInInvoice(n)
	}
	company.NextInvoiceNumber = n + 1
	return number, nil, &company
}

func isUsed(used map[string]struct{}, number string) bool {
	_, ok := used[number]
	return ok
}

func walkInInvoice(n int) string {
	return fmt.Sprintf("%s-%0*d", invoicePrefix, walkInPadWidth, n)
}

func contactInvoice(contactID string, n int) string {
	return fmt.Sprintf("%s-%s-%0*d", invoicePrefix, xid.Short(contactID), contactInvoiceWidth, n)
}
