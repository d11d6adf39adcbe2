package coordinator

import "fmt"

// Carousel is a cursor over a fixed, non-empty sequence of dashboards.
// Moving past either end wraps around. It is not safe for concurrent use.
type Carousel struct {
	n   int
	idx int
}

// NewCarousel returns a carousel over n items positioned at the first.
func NewCarousel(n int) (*Carousel, error) {
	if n < 1 {
		return nil, fmt.Errorf("carousel needs at least one dashboard")
	}
	return &Carousel{n: n}, nil
}

// Next advances by one and returns the new index.
func (c *Carousel) Next() int {
	c.idx = (c.idx + 1) % c.n
	return c.idx
}

// Previous moves back by one and returns the new index.
func (c *Carousel) Previous() int {
	c.idx = (c.idx - 1 + c.n) % c.n
	return c.idx
}

// Set jumps to idx.
func (c *Carousel) Set(idx int) error {
	if idx < 0 || idx >= c.n {
		return fmt.Errorf("dashboard index %d out of range [0,%d)", idx, c.n)
	}
	c.idx = idx
	return nil
}

func (c *Carousel) Index() int { return c.idx }

func (c *Carousel) Len() int { return c.n }
