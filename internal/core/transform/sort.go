package transform

import (
	"context"
	"slices"
	"strings"
)

// CommandSortLines sorts the lines of a document.
const CommandSortLines = "sortLines"

// SortLines splits text on LF or CRLF, sorts the lines by byte order, and
// joins them with LF.
func SortLines(ctx context.Context, text string) (string, error) {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	slices.Sort(lines)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
