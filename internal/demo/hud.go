package demo

import (
	"fmt"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/logs"
)

// DebugOverlay collects per-frame statistics. The window shows them in its
// title bar and headless runs log them as tags.
type DebugOverlay struct {
	fields []overlayField
}

type overlayField struct {
	key   string
	value any
}

// Set adds a field or replaces the value of an existing one, keeping the
// insertion order.
func (do *DebugOverlay) Set(key string, value any) {
	for i := range do.fields {
		if do.fields[i].key == key {
			do.fields[i].value = value
			return
		}
	}
	do.fields = append(do.fields, overlayField{key: key, value: value})
}

func (do *DebugOverlay) Clear() {
	do.fields = do.fields[:0]
}

// Title formats the fields as a single line prefixed with title.
func (do *DebugOverlay) Title(title string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, f := range do.fields {
		fmt.Fprintf(&b, " | %s: %v", f.key, f.value)
	}
	return b.String()
}

// Log emits the fields as the tags of one info entry. Nothing is logged
// while the overlay is empty.
func (do *DebugOverlay) Log(msg string) {
	if len(do.fields) == 0 {
		return
	}

	entry := logs.WithTag(do.fields[0].key, do.fields[0].value)
	for _, f := range do.fields[1:] {
		entry = entry.WithTag(f.key, f.value)
	}
	entry.Info(msg)
}
