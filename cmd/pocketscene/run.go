package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/stlalpha/pocketscene/internal/runner"
	"github.com/stlalpha/pocketscene/internal/storage"
)

// printer reports a headless run on the command's output streams.
type printer struct {
	out, errOut io.Writer

	mu     sync.Mutex
	failed string
}

func (p *printer) OnOutput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, text)
}

func (p *printer) OnError(traceback string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = traceback
}

func (p *printer) OnSuccess() {}

func (p *printer) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed == "" {
		return nil
	}
	fmt.Fprintln(p.errOut, p.failed)
	return errors.New("script failed")
}

func newRunCmd(a *app) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a script without the UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if language == "" {
				language = storage.Language(path)
			}
			if language == "" {
				return fmt.Errorf("cannot tell the language of %s; use --lang", path)
			}
			code, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return runScript(cmd.Context(), a, string(code), language, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&language, "lang", "", "script language (default: from the file extension)")
	return cmd
}

// runScript runs code to completion, forwarding lines from in as input.
func runScript(ctx context.Context, a *app, code, language string, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &printer{out: out, errOut: errOut}
	r := runner.New(runnerOptions(a.cfg), p)
	if _, err := r.RunCodeString(ctx, code, language); err != nil {
		return err
	}
	done := r.Done()

	if in != nil {
		go func() {
			sc := bufio.NewScanner(in)
			for sc.Scan() {
				if err := r.Send(sc.Text() + "\n"); err != nil {
					return
				}
			}
		}()
	}

	<-done
	return p.err()
}
