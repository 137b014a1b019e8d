// Package view derives what a proposals table shows: the filtered, sorted and
// paginated rows plus the multi-selection over them.
package view

import (
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// DefaultItemsPerPage is the page size when none is configured.
const DefaultItemsPerPage = 100

// Result is the derived state of one pipeline pass.
type Result struct {
	Visible    []domain.Proposal // passed the filter, in input order
	Ordered    []domain.Proposal // Visible after sorting
	Rows       []domain.Proposal // the current page of Ordered
	TotalPages int
	Page       int
}

// BulkRequest is the backend call a bulk action resolves to.
type BulkRequest struct {
	IDs   []string
	Patch domain.Patch
}

// Pipeline owns the table state: filter, sort, page, partition and selection.
// It is not safe for concurrent use; callers drive it from one event loop.
type Pipeline struct {
	Filter       domain.Filter
	Sort         domain.SortOptions
	Page         int
	ItemsPerPage int
	Archived     bool
	Selection    *Selection
}

// New creates a pipeline on page 1 of the active partition.
func New(itemsPerPage int, sort domain.SortOptions) *Pipeline {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &Pipeline{
		Filter:       domain.NewFilter(),
		Sort:         sort,
		Page:         1,
		ItemsPerPage: itemsPerPage,
		Selection:    NewSelection(),
	}
}

// TotalPages returns ceil(n / itemsPerPage), never less than 1.
func TotalPages(n, itemsPerPage int) int {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	pages := (n + itemsPerPage - 1) / itemsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// Apply runs filter, sort and pagination over records. The current page is
// clamped to [1, TotalPages] and stored back.
func (p *Pipeline) Apply(records []domain.Proposal) Result {
	visible := domain.FilterProposals(records, p.Filter, p.Archived)
	ordered := domain.SortProposals(visible, p.Sort)

	total := TotalPages(len(ordered), p.ItemsPerPage)
	p.Page = clamp(p.Page, 1, total)

	start := (p.Page - 1) * p.ItemsPerPage
	end := start + p.ItemsPerPage
	if end > len(ordered) {
		end = len(ordered)
	}

	return Result{
		Visible:    visible,
		Ordered:    ordered,
		Rows:       ordered[start:end],
		TotalPages: total,
		Page:       p.Page,
	}
}

// SelectAll selects exactly the ids of rows when checked, and nothing otherwise.
func (p *Pipeline) SelectAll(checked bool, rows []domain.Proposal) {
	if !checked {
		p.Selection.Clear()
		return
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	p.Selection.Replace(ids)
}

// AllSelected reports whether every row of a non-empty page is selected.
func (p *Pipeline) AllSelected(rows []domain.Proposal) bool {
	return len(rows) > 0 && p.Selection.Len() == len(rows)
}

// Toggle flips the selection of one id.
func (p *Pipeline) Toggle(id string) {
	p.Selection.Toggle(id)
}

// BulkStatus resolves a status change over the selection. It returns false
// when nothing is selected. The selection is cleared as soon as the request
// is issued, before the backend answers.
func (p *Pipeline) BulkStatus(status domain.Status) (BulkRequest, bool) {
	return p.takeSelection(domain.StatusPatch(status))
}

// BulkArchive resolves an archive toggle over the selection: archive from the
// active view, restore from the archived one.
func (p *Pipeline) BulkArchive() (BulkRequest, bool) {
	return p.takeSelection(domain.ArchivePatch(!p.Archived))
}

func (p *Pipeline) takeSelection(patch domain.Patch) (BulkRequest, bool) {
	if p.Selection.IsEmpty() {
		return BulkRequest{}, false
	}
	req := BulkRequest{IDs: p.Selection.IDs(), Patch: patch}
	p.Selection.Clear()
	return req, true
}

// SetSearch changes the search term and goes back to the first page.
func (p *Pipeline) SetSearch(term string) {
	p.Filter.Search = term
	p.Page = 1
}

// SetDateStart sets the lower date bound and switches the preset to custom.
func (p *Pipeline) SetDateStart(value string) {
	p.Filter.SetDateStart(value)
}

// SetDateEnd sets the upper date bound and switches the preset to custom.
func (p *Pipeline) SetDateEnd(value string) {
	p.Filter.SetDateEnd(value)
}

// SetValueMin sets the lower value bound as typed.
func (p *Pipeline) SetValueMin(value string) {
	p.Filter.ValueMin = value
}

// SetValueMax sets the upper value bound as typed.
func (p *Pipeline) SetValueMax(value string) {
	p.Filter.ValueMax = value
}

// ApplyPeriod resolves preset relative to now and fills the date bounds.
func (p *Pipeline) ApplyPeriod(preset domain.PeriodPreset, now time.Time) error {
	if preset == domain.PeriodCustom {
		p.Filter.ApplyPeriod(preset, domain.DateRange{})
		return nil
	}
	r, err := domain.ResolvePeriod(preset, now)
	if err != nil {
		return err
	}
	p.Filter.ApplyPeriod(preset, r)
	return nil
}

// ClearFilters resets the period, date and value bounds. The search term
// and the page are kept.
func (p *Pipeline) ClearFilters() {
	search := p.Filter.Search
	p.Filter.Clear()
	p.Filter.Search = search
}

// ToggleSort applies a header click on field.
func (p *Pipeline) ToggleSort(field domain.SortByField) {
	p.Sort = p.Sort.Toggle(field)
}

// NextPage moves forward one page; Apply clamps overshoot.
func (p *Pipeline) NextPage() {
	p.Page++
}

// PrevPage moves back one page, never below the first.
func (p *Pipeline) PrevPage() {
	if p.Page > 1 {
		p.Page--
	}
}

// GoTo jumps to page n; Apply clamps it into range.
func (p *Pipeline) GoTo(n int) {
	if n < 1 {
		n = 1
	}
	p.Page = n
}

// SetArchived switches partition, clearing the selection and returning to
// the first page.
func (p *Pipeline) SetArchived(archived bool) {
	if p.Archived == archived {
		return
	}
	p.Archived = archived
	p.Selection.Clear()
	p.Page = 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
