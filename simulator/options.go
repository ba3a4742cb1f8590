package simulator

// Option configures a Chip.
type Option func(*Chip)

// WithLatency sets how many status reads an erase, program execute or page
// data read stays busy for. Zero makes them complete immediately.
func WithLatency(polls int) Option {
	return func(c *Chip) {
		if polls >= 0 {
			c.latency = polls
		}
	}
}

// WithUnprotected starts the chip with the block protect bits cleared.
func WithUnprotected() Option {
	return func(c *Chip) {
		c.protection = 0
	}
}

// WithContents preloads pages. Each slice is copied into the start of the
// page; the remainder stays erased.
func WithContents(pages map[uint16][]byte) Option {
	return func(c *Chip) {
		for page, data := range pages {
			p := erased(len(c.buffer))
			copy(p, data)
			c.pages[page] = p
		}
	}
}
