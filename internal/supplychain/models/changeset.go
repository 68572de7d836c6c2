package models

// ChangeSet is the full set of entity writes produced by one transaction.
// Stores apply it all-or-nothing.
type ChangeSet struct {
	Businesses   []*Business
	ProductLists []*ProductList
	Contracts    []*Contract
	Shipments    []*Shipment
	Invoices     []*Invoice
}

func (c *ChangeSet) IsEmpty() bool {
	return len(c.Businesses) == 0 && len(c.ProductLists) == 0 && len(c.Contracts) == 0 &&
		len(c.Shipments) == 0 && len(c.Invoices) == 0
}
