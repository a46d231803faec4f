package core

import "github.com/shopspring/decimal"

// SupplierTotal is the stock value held for one supplier.
type SupplierTotal struct {
	Supplier Supplier
	Amount   decimal.Decimal
}

// Totals summarises the stock value of a list of items.
type Totals struct {
	BySupplier []SupplierTotal // one entry per known supplier, in display order
	Grand      decimal.Decimal
}

// ComputeTotals sums quantity*price per known supplier and across every item.
// Items with an unrecognised supplier only contribute to the grand total.
func ComputeTotals(items []Item) Totals {
	sums := make(map[Supplier]decimal.Decimal, len(suppliers))
	grand := decimal.Zero
	for _, it := range items {
		line := it.Total()
		grand = grand.Add(line)
		if it.Supplier.IsValid() {
			sums[it.Supplier] = sums[it.Supplier].Add(line)
		}
	}

	t := Totals{Grand: grand, BySupplier: make([]SupplierTotal, 0, len(suppliers))}
	for _, s := range suppliers {
		t.BySupplier = append(t.BySupplier, SupplierTotal{Supplier: s, Amount: sums[s]})
	}
	return t
}

// For returns the total for a supplier, zero when it has no items or is unknown.
func (t Totals) For(s Supplier) decimal.Decimal {
	for _, st := range t.BySupplier {
		if st.Supplier == s {
			return st.Amount
		}
	}
	return decimal.Zero
}
