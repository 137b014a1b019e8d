package render

import (
	"strings"
	"testing"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/colors"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func sample() domain.Proposal {
	return domain.Proposal{
		ID:           "1",
		ClientName:   "Acme Ltda",
		SentDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Value:        decimal.NewFromInt(2500),
		Status:       domain.StatusPending,
		SentVia:      "email",
		LastFollowUp: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestColorNumber(t *testing.T) {
	assert.Equal(t, "4", ColorNumber(colors.Blue))
	assert.Equal(t, "1", ColorNumber(colors.Red))
	assert.Equal(t, "3", ColorNumber(colors.Yellow))
	assert.Equal(t, "", ColorNumber(colors.Reset))
	assert.Equal(t, "", ColorNumber(""))
}

func TestHeaderMarksSortColumn(t *testing.T) {
	h := Header(120, domain.SortOptions{Field: domain.SortByValue, Order: domain.SortOrderDesc}, false)
	assert.Contains(t, h, "VALUE "+sortDescSymbol)
	assert.Contains(t, h, uncheckedSymbol)
	assert.NotContains(t, h, sortAscSymbol)

	h = Header(120, domain.SortOptions{Field: domain.SortByClientName, Order: domain.SortOrderAsc}, true)
	assert.Contains(t, h, "CLIENT "+sortAscSymbol)
	assert.Contains(t, h, checkedSymbol)

	h = Header(120, domain.DefaultSortOptions(), false)
	assert.NotContains(t, h, sortAscSymbol)
	assert.NotContains(t, h, sortDescSymbol)
}

func TestRow(t *testing.T) {
	row := Row(RowState{Proposal: sample(), Width: 140, Checked: true, Now: now})
	assert.Contains(t, row, checkedSymbol)
	assert.Contains(t, row, "Acme Ltda")
	assert.Contains(t, row, "01/05/2024")
	assert.Contains(t, row, "email")
	assert.Contains(t, row, "R$ 2.500,00")
	assert.Contains(t, row, "Pending")
	assert.Contains(t, row, "10/05/2024 (5 days)")
}

func TestRowTruncatesClient(t *testing.T) {
	p := sample()
	p.ClientName = strings.Repeat("c", 200)
	row := Row(RowState{Proposal: p, Width: 80, Now: now})
	assert.Contains(t, row, strings.Repeat("c", minClientWidth-3)+"...")
	assert.NotContains(t, row, strings.Repeat("c", minClientWidth+1))
}

func TestFooter(t *testing.T) {
	f := domain.NewFilter()
	f.Search = "acme"
	f.ApplyPeriod(domain.PeriodYearToDate, domain.DateRange{Start: "2024-01-01", End: "2024-05-15"})
	out := Footer(FooterState{Page: 2, TotalPages: 3, Visible: 250, Selected: 4, Filter: f, Width: 200})

	assert.Contains(t, out, "page 2/3")
	assert.Contains(t, out, "250 active")
	assert.Contains(t, out, "4 selected")
	assert.Contains(t, out, "period: Year to date")
	assert.Contains(t, out, "sent: 2024-01-01..2024-05-15")
	assert.Contains(t, out, `search: "acme"`)

	out = Footer(FooterState{Page: 1, TotalPages: 1, Archived: true, Filter: domain.NewFilter(), Width: 200})
	assert.Contains(t, out, "0 archived")
	assert.NotContains(t, out, "selected")
	assert.NotContains(t, out, "period")
}

func TestToastAndEmpty(t *testing.T) {
	assert.Contains(t, Toast(notify.Message{Text: "Saved successfully!", Kind: notify.KindSuccess}), "Saved successfully!")
	assert.Contains(t, Empty(), "No proposals found.")
}
