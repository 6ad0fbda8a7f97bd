package repository

// Page describes an offset/limit window over a listing query.
type Page struct {
	Number int // zero-based
	Size   int
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return 20
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number < 0 {
		return 0
	}
	return p.Number * p.Limit()
}

// PageResult pairs one page of rows with the total row count of the query.
type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Number     int
	Size       int
}
