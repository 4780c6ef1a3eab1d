package respond

import (
	"iter"
	"strings"
)

func splitComma(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for part := range strings.SplitSeq(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			if !yield(part) {
				return
			}
		}
	}
}
