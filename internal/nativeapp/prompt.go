package nativeapp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// OOBRedirectURI tells the provider to show the code to the user instead of redirecting.
const OOBRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// PromptReceiver asks the user to paste the code shown by the provider.
type PromptReceiver struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptReceiver) Start() (string, error) {
	return OOBRedirectURI, nil
}

// WaitForCode prompts until a non-empty line is read. The read runs in its own goroutine so
// that ctx can interrupt it. A cancelled read leaves that goroutine blocked on In.
func (p *PromptReceiver) WaitForCode(ctx context.Context) (string, error) {
	type result struct {
		code string
		err  error
	}
	lines := make(chan result, 1)

	go func() {
		scanner := bufio.NewScanner(p.In)
		for {
			fmt.Fprint(p.Out, "Please enter code: ")
			if !scanner.Scan() {
				err := scanner.Err()
				if err == nil {
					err = io.ErrUnexpectedEOF
				}
				lines <- result{err: fmt.Errorf("read authorization code: %w", err)}
				return
			}
			if code := strings.TrimSpace(scanner.Text()); code != "" {
				lines <- result{code: code}
				return
			}
		}
	}()

	select {
	case r := <-lines:
		return r.code, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *PromptReceiver) Stop() error {
	return nil
}
