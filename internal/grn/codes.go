package grn

import (
	"fmt"
	"strconv"
)

// Item codes are <4-digit year><6-digit zero-padded sequence>. The sequence is
// per calendar year and resets to 1 on the first allocation of a new year.
const (
	codeYearWidth = 4
	codeSeqWidth  = 6
	codeWidth     = codeYearWidth + codeSeqWidth
)

// FormatItemCode renders an item code for the given year and sequence.
func FormatItemCode(year, seq int) string {
	return fmt.Sprintf("%0*d%0*d", codeYearWidth, year, codeSeqWidth, seq)
}

// ParseItemCode splits an item code into year and sequence.
func ParseItemCode(code string) (year, seq int, err error) {
	if len(code) != codeWidth {
		return 0, 0, fmt.Errorf("grn: malformed item code %q", code)
	}
	year, err = strconv.Atoi(code[:codeYearWidth])
	if err != nil {
		return 0, 0, fmt.Errorf("grn: malformed item code %q", code)
	}
	seq, err = strconv.Atoi(code[codeYearWidth:])
	if err != nil {
		return 0, 0, fmt.Errorf("grn: malformed item code %q", code)
	}
	return year, seq, nil
}

// SeqFromMaxCode derives the last used sequence for a year from the maximum
// existing item code. Codes from other years (and an empty registry) yield 0,
// which makes the next allocation start at 1.
func SeqFromMaxCode(maxCode string, year int) int {
	codeYear, seq, err := ParseItemCode(maxCode)
	if err != nil || codeYear != year {
		return 0
	}
	return seq
}
