// Package progress reports pipeline progress to stderr with an elapsed-time
// prefix, the same shape as the teacher's progress.go extended with an
// Error method for the index command's non-fatal warnings.
package progress

import (
	"fmt"
	"os"
	"time"
)

// Progress reports pipeline progress to stderr with elapsed time.
type Progress struct {
	start   time.Time
	verbose bool
}

// New creates a progress reporter.
func New(verbose bool) *Progress {
	return &Progress{start: time.Now(), verbose: verbose}
}

// Log prints a progress message with elapsed time prefix.
func (p *Progress) Log(format string, args ...any) {
	elapsed := time.Since(p.start)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[%02d:%02d] %s\n", mins, secs, msg)
}

// Verbose prints only when verbose mode is enabled.
func (p *Progress) Verbose(format string, args ...any) {
	if p.verbose {
		p.Log(format, args...)
	}
}

// Error prints a non-fatal warning, prefixed so it stands out from normal
// progress lines.
func (p *Progress) Error(format string, args ...any) {
	p.Log("error: "+format, args...)
}
