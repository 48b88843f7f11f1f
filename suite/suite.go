// Package suite replays conformance cases against any protocol.Caller and
// compares the emitted pairs with a reference set.
package suite

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/oracle"
)

//go:embed default.yaml
var defaultSuite []byte

// EmptyBoard is the placement of a board with no pieces.
const EmptyBoard = "8/8/8/8/8/8/8/8 w - - 0 1"

// Case is one conformance check. With Piece set, the piece is placed on every
// empty square of FEN in turn and each placement is swept. With Random set,
// that many random boards of Pieces pieces are swept. Otherwise FEN itself is
// swept. Pairs, when given, is the expected set; the oracle is used if not.
type Case struct {
	Name   string   `yaml:"name"`
	FEN    string   `yaml:"fen"`
	Side   string   `yaml:"side"`
	Piece  string   `yaml:"piece"`
	Random int      `yaml:"random"`
	Pieces int      `yaml:"pieces"`
	Pairs  []string `yaml:"pairs"`
	Count  int      `yaml:"count"`
}

type Suite struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Default returns the built-in suite.
func Default() (*Suite, error) {
	return Parse(defaultSuite)
}

// Load reads a suite from a YAML file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Suite, error) {
	s := &Suite{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	for i := range s.Cases {
		if err := s.Cases[i].validate(); err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, s.Cases[i].Name, err)
		}
	}
	return s, nil
}

func (c *Case) validate() error {
	if c.FEN == "" {
		c.FEN = EmptyBoard
	}
	b, side, err := board.ParseFEN(c.FEN)
	if err != nil {
		return err
	}
	if c.Side != "" {
		if _, ok := board.ParseColor(c.Side); !ok {
			return fmt.Errorf("bad side %q", c.Side)
		}
	} else {
		c.Side = side.String()
	}
	if c.Piece != "" {
		if p, ok := board.ParsePiece(c.Piece); !ok || p == board.NoPiece {
			return fmt.Errorf("bad piece %q", c.Piece)
		}
	}
	if c.Random < 0 || c.Pieces < 0 || c.Pieces > 64 {
		return errors.New("random and pieces must be in range")
	}
	if c.Random > 0 && c.Pieces == 0 {
		c.Pieces = 12
	}
	if len(c.Pairs) > 0 && (c.Piece != "" || c.Random > 0) {
		return errors.New("pairs only apply to a single position")
	}
	if _, err := c.reference(b, board.White); err != nil {
		return err
	}
	return nil
}

// color returns the side to sweep.
func (c *Case) color() board.Color {
	col, _ := board.ParseColor(c.Side)
	return col
}

// reference returns the expected pairs for b.
func (c *Case) reference(b *board.Board, side board.Color) ([]engine.Pair, error) {
	if len(c.Pairs) == 0 {
		return oracle.FromBoard(b, side), nil
	}
	out := make([]engine.Pair, 0, len(c.Pairs))
	for _, s := range c.Pairs {
		p, err := engine.ParsePair(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	engine.SortPairs(out)
	return out, nil
}
