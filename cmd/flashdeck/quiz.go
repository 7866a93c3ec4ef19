package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/quiz"
)

func newQuizCmd() *cobra.Command {
	var (
		mode string
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "quiz <deck>",
		Short: "Review a deck until every card is answered correctly",
		Long: "In reveal mode press Enter to see the answer, then y if you knew it.\n" +
			"In typed mode type the answer. Enter :q to stop or :r to start over.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			m, err := quiz.ParseMode(mode)
			if err != nil {
				return err
			}
			d, err := a.decks.Get(cmd.Context(), a.scope, args[0])
			if err != nil {
				return err
			}

			var opts []quiz.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, quiz.WithSeed(seed))
			}
			s, err := quiz.Start(d, m, opts...)
			if err != nil {
				return err
			}
			return runQuiz(s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "reveal", "reveal or typed")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "fix the draw order")
	return cmd
}

const (
	cmdQuit    = ":q"
	cmdRestart = ":r"
)

// runQuiz drives s from line-based input until it completes, the user quits
// or input runs out.
func runQuiz(s *quiz.Session, in io.Reader, out io.Writer) error {
	lines := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !lines.Scan() {
			return "", false
		}
		return strings.TrimSpace(lines.Text()), true
	}

	fmt.Fprintf(out, "%s: %d cards, %s mode\n", s.DeckName(), s.Total(), s.Mode())
	for s.State() != quiz.Complete {
		q, _ := s.Question()
		done, total := s.Progress()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", done, total, q)

		var line string
		var ok bool
		if s.Mode() == quiz.ModeTyped {
			line, ok = read("answer> ")
		} else {
			line, ok = read("press Enter to reveal> ")
		}
		if !ok {
			return lines.Err()
		}
		switch line {
		case cmdQuit:
			fmt.Fprintf(out, "stopped with score %d/%d\n", s.Score(), s.Total())
			return nil
		case cmdRestart:
			s.Restart()
			fmt.Fprintln(out, "restarted")
			continue
		}

		if s.Mode() == quiz.ModeTyped {
			res, err := s.SubmitAnswer(line)
			if err != nil {
				return err
			}
			if res.Correct {
				fmt.Fprintln(out, "correct")
			} else {
				fmt.Fprintf(out, "incorrect, the answer is %q\n", res.Expected)
			}
			continue
		}

		if err := s.Reveal(); err != nil {
			return err
		}
		answer, err := s.Answer()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "answer: %s\n", answer)

		line, ok = read("did you know it? [y/N]> ")
		if !ok {
			return lines.Err()
		}
		if strings.EqualFold(line, "y") || strings.EqualFold(line, "yes") {
			err = s.MarkKnown()
		} else {
			err = s.MarkUnknown()
		}
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\ndone, score %d/%d\n", s.Score(), s.Total())
	return nil
}
