package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinSlot = 1
	MaxSlot = 9
)

// Claim is a parsed slot-claim line: a slot number followed by free text.
type Claim struct {
	Position int
	Rest     string
}

// ParseClaim matches line against the claim grammar
//
//	^([1-9])\s?-?\s?([^\d].*)$
//
// The optional separators are tried greedily and backtracked in the same
// order a regular expression engine would, so "3 5" yields the rest " 5".
func ParseClaim(line string) (Claim, bool) {
	line = strings.TrimSuffix(line, "\n")
	if line == "" || line[0] < '1' || line[0] > '9' {
		return Claim{}, false
	}
	position := int(line[0] - '0')
	tail := line[1:]

	for _, afterSpace := range optionalSpace(tail) {
		for _, afterDash := range optionalDash(afterSpace) {
			for _, rest := range optionalSpace(afterDash) {
				if validRest(rest) {
					return Claim{Position: position, Rest: rest}, true
				}
			}
		}
	}

	return Claim{}, false
}

// optionalSpace returns the candidate remainders for `\s?`, greedy first.
func optionalSpace(s string) []string {
	r, size := utf8.DecodeRuneInString(s)
	if size > 0 && r != utf8.RuneError && unicode.IsSpace(r) {
		return []string{s[size:], s}
	}
	return []string{s}
}

func optionalDash(s string) []string {
	if strings.HasPrefix(s, "-") {
		return []string{s[1:], s}
	}
	return []string{s}
}

func validRest(rest string) bool {
	if rest == "" || strings.ContainsRune(rest, '\n') {
		return false
	}
	first, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsDigit(first)
}

// ParseSlot validates a slot argument such as "7".
func ParseSlot(raw string) (int, error) {
	slot, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || slot < MinSlot || slot > MaxSlot {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	return slot, nil
}

// CloseMarker is appended to a slot's status when the slot is closed.
const CloseMarker = "--"

// closeClaim builds the claim "<slot> --". The grammar alone would let the
// optional separator swallow one dash, so the marker is set explicitly.
func closeClaim(raw string) (Claim, error) {
	trimmed := strings.TrimSpace(raw)
	claim, ok := ParseClaim(trimmed + " " + CloseMarker)
	if !ok || len(trimmed) != 1 {
		return Claim{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	claim.Rest = CloseMarker
	return claim, nil
}
