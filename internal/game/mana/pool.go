package mana

import (
	"sync"
)

// Type represents a type of mana.
type Type string

const (
	White     Type = "WHITE"
	Blue      Type = "BLUE"
	Black     Type = "BLACK"
	Red       Type = "RED"
	Green     Type = "GREEN"
	Colorless Type = "COLORLESS"
)

// colorOrder is the order generic costs consume the pool.
var colorOrder = []Type{White, Blue, Black, Red, Green, Colorless}

// Pool represents a player's mana pool. It empties at cleanup.
type Pool struct {
	mu      sync.Mutex
	amounts map[Type]int
}

// NewPool creates a new empty mana pool.
func NewPool() *Pool {
	return &Pool{amounts: make(map[Type]int)}
}

// Add adds mana to the pool.
func (p *Pool) Add(manaType Type, amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amounts[manaType] += amount
}

// Get returns the amount of a specific mana type in the pool.
func (p *Pool) Get(manaType Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.amounts[manaType]
}

// Total returns the total mana across all types.
func (p *Pool) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.amounts {
		total += n
	}
	return total
}

// CanPay reports whether the pool can cover the cost: every colored symbol
// from matching mana, and the generic portion from whatever remains.
func (p *Pool) CanPay(cost *Cost) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canPayLocked(cost)
}

func (p *Pool) canPayLocked(cost *Cost) bool {
	if cost == nil {
		return true
	}
	remaining := 0
	for manaType, n := range p.amounts {
		need := cost.colored(manaType)
		if n < need {
			return false
		}
		remaining += n - need
	}
	for _, manaType := range colorOrder {
		if p.amounts[manaType] == 0 && cost.colored(manaType) > 0 {
			return false
		}
	}
	return remaining >= cost.Generic
}

// Pay removes the cost from the pool. Returns false, with the pool
// untouched, if it cannot be covered.
func (p *Pool) Pay(cost *Cost) bool {
	if cost == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.canPayLocked(cost) {
		return false
	}

	for _, manaType := range colorOrder {
		p.amounts[manaType] -= cost.colored(manaType)
	}
	generic := cost.Generic
	for _, manaType := range colorOrder {
		if generic == 0 {
			break
		}
		spend := p.amounts[manaType]
		if spend > generic {
			spend = generic
		}
		p.amounts[manaType] -= spend
		generic -= spend
	}
	return true
}

// Empty empties the mana pool.
func (p *Pool) Empty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amounts = make(map[Type]int)
}
