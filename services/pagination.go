package services

import (
	"strconv"
	"strings"
)

// Paginator is page-index bookkeeping for a list grid. Pages are 1-based and
// there is always at least one page.
type Paginator struct {
	TotalItems   int
	ItemsPerPage int
	current      int
	input        string
}

func NewPaginator(totalItems, itemsPerPage int) *Paginator {
	if itemsPerPage <= 0 {
		itemsPerPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	return &Paginator{TotalItems: totalItems, ItemsPerPage: itemsPerPage, current: 1, input: "1"}
}

// perPage treats a non-positive ItemsPerPage as 1.
func (p *Paginator) perPage() int { return max(p.ItemsPerPage, 1) }

func (p *Paginator) TotalPages() int {
	per := p.perPage()
	pages := (max(p.TotalItems, 0) + per - 1) / per
	return max(pages, 1)
}

// CurrentPage is 1 for a zero Paginator.
func (p *Paginator) CurrentPage() int { return max(p.current, 1) }

// GoTo moves to page, clamped to [1, TotalPages].
func (p *Paginator) GoTo(page int) {
	p.current = min(max(page, 1), p.TotalPages())
	p.input = strconv.Itoa(p.current)
}

func (p *Paginator) Next() { p.GoTo(p.CurrentPage() + 1) }
func (p *Paginator) Prev() { p.GoTo(p.CurrentPage() - 1) }

func (p *Paginator) HasNext() bool { return p.CurrentPage() < p.TotalPages() }
func (p *Paginator) HasPrev() bool { return p.CurrentPage() > 1 }

// SetInput records the text of the page-number box without navigating.
func (p *Paginator) SetInput(s string) { p.input = s }

func (p *Paginator) Input() string { return p.input }

// ConfirmInput navigates to the typed page. Input that is not a whole number
// in [1, TotalPages] is not clamped: the box reverts to the current page and
// false is returned.
func (p *Paginator) ConfirmInput() bool {
	page, err := strconv.Atoi(strings.TrimSpace(p.input))
	if err != nil || page <= 0 || page > p.TotalPages() {
		p.input = strconv.Itoa(p.CurrentPage())
		return false
	}
	p.GoTo(page)
	return true
}

// SetTotalItems updates the item count, pulling the current page back into
// range when the list shrank.
func (p *Paginator) SetTotalItems(total int) {
	p.TotalItems = max(total, 0)
	p.GoTo(p.CurrentPage())
}

// Offset is the number of rows before the current page.
func (p *Paginator) Offset() int {
	return (p.CurrentPage() - 1) * p.perPage()
}

// Range returns the 1-based first and last item numbers on the current page,
// or 0, 0 for an empty list.
func (p *Paginator) Range() (first, last int) {
	if p.TotalItems <= 0 {
		return 0, 0
	}
	first = p.Offset() + 1
	last = min(p.Offset()+p.perPage(), p.TotalItems)
	return first, last
}

// ParsePage reads a requested page number from a query value; anything that
// is not a positive integer means page 1. Out-of-range pages are clamped by
// GoTo once the total is known.
func ParsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
