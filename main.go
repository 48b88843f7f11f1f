package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/shell"
)

func main() {
	if err := consoleLoop(context.Background(), engine.New(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// consoleLoop speaks a UCI-flavoured line protocol for scripted use: uci and
// isready handshakes, position startpos|fen, go for a full sweep, and every
// shell command besides.
func consoleLoop(ctx context.Context, e *engine.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	sc := shell.NewController(e)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Fprintln(out, "id name chess-sweeper 0.1")
			fmt.Fprintln(out, "id author chess-sweeper authors")
			fmt.Fprintln(out, "uciok")
			continue
		case "isready":
			fmt.Fprintln(out, "readyok")
			continue
		case "ucinewgame":
			line = "reset"
		case "position":
			if len(tokens) < 2 {
				fmt.Fprintln(out, "info string Malformed position command")
				continue
			}
			switch strings.ToLower(tokens[1]) {
			case "startpos":
				line = "fen " + board.FENStartPos
			case "fen":
				line = "fen " + strings.Join(tokens[2:], " ")
			default:
				fmt.Fprintln(out, "info string Invalid position subcommand")
				continue
			}
		case "go":
			line = "sweep " + strings.Join(tokens[1:], " ")
		}
		err := sc.Run(ctx, line, out, infoWriter{out})
		if errors.Is(err, shell.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}

// infoWriter prefixes error lines so a UCI front end shows them.
type infoWriter struct{ w io.Writer }

func (iw infoWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(iw.w, "info string "); err != nil {
		return 0, err
	}
	return iw.w.Write(p)
}
