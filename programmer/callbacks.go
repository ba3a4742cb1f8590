package programmer

import (
	"time"

	"github.com/moffa90/go-w25n/nand"
)

// Operation phases reported in Progress.Phase.
const (
	PhaseIdentifying = "identifying"
	PhaseErasing     = "erasing"
	PhaseProgramming = "programming"
	PhaseReading     = "reading"
	PhaseValidating  = "validating"
	PhaseComplete    = "complete"
)

// Progress contains information about the progress of an operation.
// Passed to ProgressCallback during Program, Dump and Validate.
type Progress struct {
	// Phase describes the current operation phase:
	//   "identifying" - Checking the JEDEC ID
	//   "erasing"     - Erasing blocks
	//   "programming" - Programming (and verifying) pages
	//   "reading"     - Reading pages out
	//   "validating"  - Running the write/read-back pattern test
	//   "complete"    - Operation completed successfully
	Phase string

	// CurrentPage is the number of pages (or blocks while erasing) done
	CurrentPage int

	// TotalPages is the number of pages (or blocks while erasing) to do
	TotalPages int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the number of data bytes programmed or read so far
	BytesWritten int

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically to report progress.
// Implementations should return quickly to avoid blocking the operation.
//
// Example:
//
//	prog := programmer.New(dev,
//	    programmer.WithProgressCallback(func(p programmer.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is the logging interface shared with the nand package.
type Logger = nand.Logger
