package programmer

import "github.com/moffa90/go-w25n/protocol"

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during operations to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// WriteMethod is the load variant used to fill the data buffer
	WriteMethod protocol.WriteMethod

	// ReadMethod is the fast read variant used to drain the data buffer
	ReadMethod protocol.ReadMethod

	// VerifyAfterProgram reads every page back after programming it
	VerifyAfterProgram bool

	// EraseBeforeProgram erases every block the image covers first
	EraseBeforeProgram bool

	// Unprotect clears the block protect bits before writing
	Unprotect bool

	// SkipBadBlocks moves data destined for a block carrying a bad block
	// marker to the next good block
	SkipBadBlocks bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		WriteMethod:        protocol.SingleLoad,
		ReadMethod:         protocol.FastRead,
		VerifyAfterProgram: true,
		EraseBeforeProgram: true,
		Unprotect:          true,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track progress.
//
// Example:
//
//	prog := programmer.New(dev,
//	    programmer.WithProgressCallback(func(p programmer.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
//
// Example:
//
//	prog := programmer.New(dev, programmer.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithWriteMethod sets the load variant. Variants that keep the buffer
// contents are accepted but behave like their clearing counterparts since
// every page is loaded whole. Invalid methods are ignored.
//
// Example:
//
//	prog := programmer.New(dev, programmer.WithWriteMethod(protocol.QuadLoad))
func WithWriteMethod(m protocol.WriteMethod) Option {
	return func(c *Config) {
		if m.Valid() {
			c.WriteMethod = m
		}
	}
}

// WithReadMethod sets the fast read variant. Invalid methods are ignored.
//
// Example:
//
//	prog := programmer.New(dev, programmer.WithReadMethod(protocol.FastReadQuadIO))
func WithReadMethod(m protocol.ReadMethod) Option {
	return func(c *Config) {
		if m.Valid() {
			c.ReadMethod = m
		}
	}
}

// WithVerifyAfterProgram enables or disables page read-back after
// programming. Default is true.
func WithVerifyAfterProgram(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterProgram = verify
	}
}

// WithEraseBeforeProgram enables or disables erasing the covered blocks
// before programming. Default is true.
func WithEraseBeforeProgram(erase bool) Option {
	return func(c *Config) {
		c.EraseBeforeProgram = erase
	}
}

// WithUnprotect enables or disables clearing the block protect bits before
// erasing or programming. Default is true.
func WithUnprotect(unprotect bool) Option {
	return func(c *Config) {
		c.Unprotect = unprotect
	}
}

// WithSkipBadBlocks enables skipping blocks whose first page carries a bad
// block marker. Default is false.
func WithSkipBadBlocks(skip bool) Option {
	return func(c *Config) {
		c.SkipBadBlocks = skip
	}
}
