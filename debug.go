package st7735

import (
	"fmt"
	"io"
	"os"
	"time"
)

var (
	// debugEnabled controls whether Debugf produces output.
	debugEnabled = os.Getenv("ST7735_DEBUG") != ""
	debugOutput  io.Writer = os.Stderr
)

// SetDebugEnabled turns diagnostic output on or off.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// SetDebugOutput redirects diagnostic output, for example to a serial console.
// A nil writer restores os.Stderr.
func SetDebugOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	debugOutput = w
}

// Debugf prints diagnostic information when debugging is enabled.
// Lines are terminated with CRLF so they render on serial terminals.
func Debugf(format string, args ...any) {
	if !debugEnabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(debugOutput, "%s st7735: %s\r\n", timestamp, fmt.Sprintf(format, args...))
}
