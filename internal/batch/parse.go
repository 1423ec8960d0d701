package batch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseIndices reads term indices separated by whitespace or commas.
// A '#' starts a comment that runs to the end of the line.
func ParseIndices(r io.Reader) ([]int64, error) {
	var out []int64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		for _, f := range fields {
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid index %q: %w", line, f, err)
			}
			out = append(out, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indices: %w", err)
	}
	return out, nil
}
