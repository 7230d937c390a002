package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Import replaces the roster entries with the ones parsed from a default
// format export. Whitespace runs, newlines included, count as a single
// separator, so every entry is read as "<slot> <name> <caller> [status...]"
// with status words running up to the next entry or the Mode/Leader
// trailer. A slot number inside a status only starts a new entry when the
// rest of the text still parses that way; otherwise it stays a status word.
// On failure the roster is left untouched.
func (r *Roster) Import(text string) error {
	parsed, err := parseExport(text)
	if err != nil {
		return err
	}

	r.entries = parsed.entries
	r.sortEntries()
	if parsed.hasTrailer {
		r.Mode = parsed.mode
		r.Leader = parsed.leader
	}

	return nil
}

type parsedExport struct {
	entries    []SlotEntry
	hasTrailer bool
	mode       string
	leader     string
}

// exportParser reads entries from a token stream, backtracking when a slot
// number turns out to belong to the previous entry's status.
type exportParser struct {
	tokens []string
	// failed remembers starting points already known not to parse.
	failed map[parseState]error
}

type parseState struct {
	index int
	seen  uint16
}

func parseExport(text string) (parsedExport, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return parsedExport{}, fmt.Errorf("%w: nothing to import", ErrInvalidImport)
	}

	p := &exportParser{tokens: tokens, failed: make(map[parseState]error)}
	if tokens[0] == modeLabel {
		return p.trailer(0)
	}
	return p.entryAt(parseState{})
}

// entryAt parses an entry starting at state.index and everything after it.
func (p *exportParser) entryAt(state parseState) (parsedExport, error) {
	if err, ok := p.failed[state]; ok {
		return parsedExport{}, err
	}
	result, err := p.parseEntry(state)
	if err != nil {
		p.failed[state] = err
	}
	return result, err
}

func (p *exportParser) parseEntry(state parseState) (parsedExport, error) {
	i := state.index
	position, ok := slotToken(p.tokens[i])
	if !ok {
		return parsedExport{}, fmt.Errorf("%w: expected a slot number, got %q", ErrInvalidImport, p.tokens[i])
	}
	bit := uint16(1) << position
	if state.seen&bit != 0 {
		return parsedExport{}, fmt.Errorf("%w: slot %d listed twice", ErrInvalidImport, position)
	}
	if i+2 >= len(p.tokens) {
		return parsedExport{}, fmt.Errorf("%w: slot %d needs a class and a caller", ErrInvalidImport, position)
	}
	name, caller := p.tokens[i+1], p.tokens[i+2]
	if !validName(name) || caller == modeLabel {
		return parsedExport{}, fmt.Errorf("%w: slot %d has no valid class and caller", ErrInvalidImport, position)
	}

	entry := SlotEntry{Position: position, Name: name, Caller: caller}
	seen := state.seen | bit

	var status []string
	for j := i + 3; ; j++ {
		var (
			rest parsedExport
			err  error
		)
		switch {
		case j == len(p.tokens):
		case p.tokens[j] == modeLabel:
			rest, err = p.trailer(j)
			if err != nil {
				return parsedExport{}, err
			}
		default:
			if _, ok := slotToken(p.tokens[j]); !ok {
				status = append(status, p.tokens[j])
				continue
			}
			rest, err = p.entryAt(parseState{index: j, seen: seen})
			if err != nil {
				status = append(status, p.tokens[j])
				continue
			}
		}

		entry.Status = strings.Join(status, " ")
		rest.entries = append([]SlotEntry{entry}, rest.entries...)
		return rest, nil
	}
}

func (p *exportParser) trailer(i int) (parsedExport, error) {
	mode, leader, err := parseTrailer(p.tokens[i+1:])
	if err != nil {
		return parsedExport{}, err
	}
	return parsedExport{hasTrailer: true, mode: mode, leader: leader}, nil
}

func parseTrailer(tokens []string) (string, string, error) {
	for i, token := range tokens {
		if token == leaderLabel {
			return strings.Join(tokens[:i], " "), strings.Join(tokens[i+1:], " "), nil
		}
	}
	return "", "", fmt.Errorf("%w: %s without %s", ErrInvalidImport, modeLabel, leaderLabel)
}

func slotToken(token string) (int, bool) {
	if len(token) != 1 || token[0] < '1' || token[0] > '9' {
		return 0, false
	}
	return int(token[0] - '0'), true
}

func validName(name string) bool {
	if name == modeLabel {
		return false
	}
	first, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsDigit(first)
}
