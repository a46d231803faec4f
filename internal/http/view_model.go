package http

import (
	"stock/internal/core"
	"stock/internal/view"
)

type tab struct {
	Name   string
	Label  string
	Active bool
}

type itemRow struct {
	ID       string
	Supplier string
	Category string
	Name     string
	Quantity int
	Price    string
	Total    string
}

type supplierTotalRow struct {
	Supplier string
	Amount   string
}

type listingData struct {
	View            string
	Search          string
	Category        string
	CategoryOptions []string
	Rows            []itemRow
	SupplierTotals  []supplierTotalRow
	GrandTotal      string
}

type pageData struct {
	Tabs       []tab
	IsHome     bool
	Suppliers  []core.Supplier
	Categories []core.Category
	Listing    listingData
}

func (s *Server) pageData(params ListingParams) pageData {
	current := s.store.View()

	tabs := make([]tab, 0, len(view.All()))
	for _, v := range view.All() {
		tabs = append(tabs, tab{Name: v.String(), Label: tabLabel(v), Active: v == current})
	}

	return pageData{
		Tabs:       tabs,
		IsHome:     !current.Lists(),
		Suppliers:  core.Suppliers(),
		Categories: core.Categories(),
		Listing:    s.listingData(params),
	}
}

func tabLabel(v view.View) string {
	if v == view.Home {
		return "Add item"
	}
	return v.String()
}

// listingData filters the last-fetched list for display. Totals cover the
// whole list, not just the rows that match the search.
func (s *Server) listingData(params ListingParams) listingData {
	items := s.store.Items()
	visible := core.Filter(items, params.Search, params.Category)
	totals := core.ComputeTotals(items)

	options := []string{core.CategoryAll.String()}
	for _, c := range core.Categories() {
		options = append(options, c.String())
	}

	category := params.Category
	if category == "" {
		category = core.CategoryAll
	}

	data := listingData{
		View:            s.store.View().String(),
		Search:          params.Search,
		Category:        category.String(),
		CategoryOptions: options,
		Rows:            make([]itemRow, 0, len(visible)),
		GrandTotal:      core.FormatPounds(totals.Grand),
	}
	for _, it := range visible {
		data.Rows = append(data.Rows, itemRow{
			ID:       it.ID,
			Supplier: it.Supplier.String(),
			Category: it.Category.String(),
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    core.FormatPounds(it.Price),
			Total:    core.FormatPounds(it.Total()),
		})
	}
	for _, st := range totals.BySupplier {
		data.SupplierTotals = append(data.SupplierTotals, supplierTotalRow{
			Supplier: st.Supplier.String(),
			Amount:   core.FormatPounds(st.Amount),
		})
	}
	return data
}
