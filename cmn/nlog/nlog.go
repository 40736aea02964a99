// Package nlog provides a small severity-leveled logger: buffering,
// timestamping, writing, and flushing, with the same public surface as
// the full-sized original this one is trimmed down from.
package nlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevChar = [...]byte{sevInfo: 'I', sevWarn: 'W', sevErr: 'E'}

type logger struct {
	mu   sync.Mutex
	w    io.Writer
	errW io.Writer // where Errorf also goes, in addition to w; nil means same as w
}

var (
	std          = &logger{w: os.Stderr}
	alsoToStderr bool // when writing to a file, also echo to stderr
)

// SetOutput redirects log output, e.g. to a rotated file opened by the caller.
// Passing nil restores stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.w = w
}

// SetAlsoToStderr mirrors every line to stderr in addition to the configured
// output (useful once SetOutput points at a file).
func SetAlsoToStderr(v bool) {
	std.mu.Lock()
	alsoToStderr = v
	std.mu.Unlock()
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth+1, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 1, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 1, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 1, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 1, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth+1, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 1, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 1, format, args...) }

// Flush is a no-op placeholder preserving the original package's API: this
// trimmed logger writes synchronously and has nothing to buffer.
func Flush(...bool) {}

func log(sev severity, depth int, format string, args ...any) {
	line := format1(sev, depth+1, format, args...)

	std.mu.Lock()
	defer std.mu.Unlock()
	std.w.Write(line)
	if alsoToStderr && std.w != io.Writer(os.Stderr) {
		os.Stderr.Write(line)
	}
}

func format1(sev severity, depth int, format string, args ...any) []byte {
	var b strings.Builder
	b.WriteByte(sevChar[sev])
	b.WriteByte(' ')
	b.WriteString(time.Now().Format("15:04:05.000000"))
	b.WriteByte(' ')

	_, fn, ln, ok := runtime.Caller(depth + 1)
	if ok {
		if idx := strings.LastIndexByte(fn, filepath.Separator); idx >= 0 {
			fn = fn[idx+1:]
		}
		b.WriteString(fn)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ln))
		b.WriteByte(' ')
	}

	if format == "" {
		fmt.Fprintln(&b, args...)
	} else {
		fmt.Fprintf(&b, format, args...)
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}
