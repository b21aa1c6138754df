// Package notation parses Extended Position Description records, the
// FEN-plus-opcodes test format used by mateIn1.epd/mateIn2.epd and similar
// fixtures.
//
// This is a from-scratch opcode parser rather than a port of the grammar in
// easychessanimations-zurichess's notation/epd_ast.go: that file is the
// output of goyacc, and regenerating a parser generator's output without
// running it is not possible under this module's no-toolchain constraint.
// The opcode set this package understands (bm, id, and a generic fallback
// into Comment) covers everything internal/mates exercises.
package notation

import (
	"fmt"
	"strings"

	"github.com/kestrel-engine/kestrel/board"
)

// EPD is one parsed record: a position plus its annotated opcodes.
type EPD struct {
	Position board.Board
	Id       string
	BestMove []board.Move
	Comment  map[string]string
}

// ParseEPD parses one line of the form
//
//	<piece placement> <side> <castling> <en passant> [opcode;]...
//
// Best moves (the "bm" opcode) are given in UCI long algebraic form
// (e2e4), not SAN.
func ParseEPD(line string) (*EPD, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("notation: short EPD record %q", line)
	}
	fen := strings.Join(fields[:4], " ")

	var b board.Board
	if err := b.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("notation: %w", err)
	}

	epd := &EPD{Position: b, Comment: make(map[string]string)}
	rest := strings.TrimSpace(strings.Join(fields[4:], " "))
	for _, op := range strings.Split(rest, ";") {
		op = strings.TrimSpace(op)
		if op == "" {
			continue
		}
		if err := epd.applyOpcode(op); err != nil {
			return nil, err
		}
	}
	return epd, nil
}

func (e *EPD) applyOpcode(op string) error {
	parts := strings.Fields(op)
	if len(parts) == 0 {
		return nil
	}
	key, args := parts[0], parts[1:]
	switch key {
	case "bm":
		for _, tok := range args {
			m, err := board.ParseUCI(&e.Position, trimQuotes(tok))
			if err != nil {
				return fmt.Errorf("notation: bad bm move %q: %w", tok, err)
			}
			e.BestMove = append(e.BestMove, m)
		}
	case "id":
		e.Id = trimQuotes(strings.Join(args, " "))
	default:
		e.Comment[key] = trimQuotes(strings.Join(args, " "))
	}
	return nil
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"")
}

func (e *EPD) String() string {
	var sb strings.Builder
	sb.WriteString(e.Position.FEN())
	for _, bm := range e.BestMove {
		sb.WriteString(" bm ")
		sb.WriteString(bm.UCI())
		sb.WriteString(";")
	}
	if e.Id != "" {
		sb.WriteString(" id \"" + e.Id + "\";")
	}
	return sb.String()
}
