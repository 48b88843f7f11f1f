package shell

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg+"\n")
}

// Loop reads commands with readline until quit, EOF or an interrupt on an
// empty line.
func (sc *Controller) Loop(ctx context.Context, historyFile string) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32msweeper>\033[0m ",
		HistoryFile:     historyFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	for ctx.Err() == nil {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if err := sc.Run(ctx, strings.TrimSpace(line), l.Stdout(), l.Stderr()); err != nil {
			if errors.Is(err, ErrQuit) {
				break
			}
			return err
		}
	}
	log.Debug().Msg("exiting readline loop")
	return nil
}

// Run executes one line, writing the reply to out and command errors to
// errOut. Only ErrQuit and context errors are returned.
func (sc *Controller) Run(ctx context.Context, line string, out, errOut io.Writer) error {
	resp, err := sc.Execute(ctx, line)
	switch {
	case errors.Is(err, ErrQuit):
		return err
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		showMessage("Error: "+err.Error(), errOut)
	case resp != nil:
		showMessage(resp.String(), out)
	}
	return nil
}
