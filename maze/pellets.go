package maze

// Pellets tracks per-episode collectible consumption on top of an immutable
// Grid. Consumption is monotone: a consumed cell never fires again until
// Reset.
type Pellets struct {
	grid      *Grid
	consumed  []bool
	remaining int
}

// NewPellets creates the per-episode collectible state for g.
func NewPellets(g *Grid) *Pellets {
	p := &Pellets{grid: g}
	p.Reset()
	return p
}

// Reset restores every collectible for a new episode.
func (p *Pellets) Reset() {
	p.consumed = make([]bool, p.grid.w*p.grid.h)
	p.remaining = p.grid.pellets
}

// Consume marks the collectible at (c,r) as eaten. It returns the cell type
// (CellPellet or CellPower) and true on a pickup, or false if the cell holds
// no un-consumed collectible.
func (p *Pellets) Consume(c, r int) (Cell, bool) {
	cell := p.grid.At(c, r)
	if cell != CellPellet && cell != CellPower {
		return CellWall, false
	}
	idx := r*p.grid.w + c
	if p.consumed[idx] {
		return CellWall, false
	}
	p.consumed[idx] = true
	p.remaining--
	return cell, true
}

// Consumed reports whether the collectible at (c,r) has been eaten.
func (p *Pellets) Consumed(c, r int) bool {
	if c < 0 || c >= p.grid.w || r < 0 || r >= p.grid.h {
		return false
	}
	return p.consumed[r*p.grid.w+c]
}

// Has reports whether an un-consumed collectible sits at (c,r).
func (p *Pellets) Has(c, r int) bool {
	cell := p.grid.At(c, r)
	if cell != CellPellet && cell != CellPower {
		return false
	}
	return !p.Consumed(c, r)
}

// Remaining returns the outstanding collectible count. Reaching zero is the
// clearance-win condition.
func (p *Pellets) Remaining() int { return p.remaining }
