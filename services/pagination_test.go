package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginatorTotalPages(t *testing.T) {
	assert.Equal(t, 1, NewPaginator(0, 15).TotalPages())
	assert.Equal(t, 1, NewPaginator(15, 15).TotalPages())
	assert.Equal(t, 2, NewPaginator(16, 15).TotalPages())
	assert.Equal(t, 7, NewPaginator(100, 15).TotalPages())
	assert.Equal(t, 3, NewPaginator(3, 0).TotalPages())
}

func TestPaginatorClamps(t *testing.T) {
	p := NewPaginator(100, 15)
	p.GoTo(99)
	assert.Equal(t, 7, p.CurrentPage())
	assert.False(t, p.HasNext())
	p.Next()
	assert.Equal(t, 7, p.CurrentPage())

	p.GoTo(-4)
	assert.Equal(t, 1, p.CurrentPage())
	assert.False(t, p.HasPrev())
	p.Prev()
	assert.Equal(t, 1, p.CurrentPage())

	p.Next()
	assert.Equal(t, 2, p.CurrentPage())
	assert.Equal(t, "2", p.Input())
}

func TestPaginatorConfirmInputRevertsOnInvalid(t *testing.T) {
	p := NewPaginator(100, 15)
	p.GoTo(3)

	for _, in := range []string{"abc", "0", "-1", "8", "", "2.5", "2abc"} {
		p.SetInput(in)
		assert.False(t, p.ConfirmInput(), in)
		assert.Equal(t, 3, p.CurrentPage(), in)
		assert.Equal(t, "3", p.Input(), in)
	}

	p.SetInput(" 7 ")
	assert.True(t, p.ConfirmInput())
	assert.Equal(t, 7, p.CurrentPage())
	assert.Equal(t, "7", p.Input())
}

func TestPaginatorRangeAndOffset(t *testing.T) {
	p := NewPaginator(32, 15)
	first, last := p.Range()
	assert.Equal(t, [2]int{1, 15}, [2]int{first, last})

	p.GoTo(3)
	assert.Equal(t, 30, p.Offset())
	first, last = p.Range()
	assert.Equal(t, [2]int{31, 32}, [2]int{first, last})

	first, last = NewPaginator(0, 15).Range()
	assert.Equal(t, [2]int{0, 0}, [2]int{first, last})
}

func TestPaginatorSetTotalItemsShrinks(t *testing.T) {
	p := NewPaginator(100, 15)
	p.GoTo(7)
	p.SetTotalItems(20)
	assert.Equal(t, 2, p.CurrentPage())
	p.SetTotalItems(0)
	assert.Equal(t, 1, p.CurrentPage())
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("x"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 4, ParsePage("4"))
	assert.Equal(t, 40, ParsePage(" 40 "))
	assert.Equal(t, 1, ParsePage("2abc"))
}

func TestPaginatorTwentyThreeItems(t *testing.T) {
	p := NewPaginator(23, 15)
	assert.Equal(t, 2, p.TotalPages())

	p.GoTo(2)
	first, last := p.Range()
	assert.Equal(t, 16, first)
	assert.Equal(t, 23, last)
	assert.Equal(t, 8, last-first+1)

	p.Next()
	assert.Equal(t, 2, p.CurrentPage())
}

func TestPaginatorLiteralWithoutPageSize(t *testing.T) {
	p := &Paginator{TotalItems: 5}
	assert.NotPanics(t, func() { p.TotalPages() })
	assert.Equal(t, 5, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 0, p.Offset())

	first, last := p.Range()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, last)

	p.Next()
	assert.Equal(t, 2, p.CurrentPage())
	assert.Equal(t, 1, (&Paginator{ItemsPerPage: -3}).TotalPages())
}
