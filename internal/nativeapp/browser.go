package nativeapp

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/browser"
)

// Browser opens the authorization URL for the user.
type Browser interface {
	Open(url string) error
}

// SystemBrowser tries the desktop opener, then the preferred browser command, then prints the URL.
type SystemBrowser struct {
	// Command is the browser executable tried when the desktop opener fails, e.g. "google-chrome".
	Command string
	// Out receives the manual instructions, os.Stdout when nil.
	Out io.Writer

	// overridable in tests
	openDesktop func(url string) error
	startCmd    func(name string, args ...string) error
}

// NewSystemBrowser creates a SystemBrowser that falls back to the given command.
func NewSystemBrowser(command string, out io.Writer) *SystemBrowser {
	return &SystemBrowser{Command: command, Out: out}
}

// Open never fails: if nothing could launch a browser the URL is printed for copy and paste.
func (b *SystemBrowser) Open(url string) error {
	openDesktop := b.openDesktop
	if openDesktop == nil {
		openDesktop = openWithDesktop
	}
	startCmd := b.startCmd
	if startCmd == nil {
		startCmd = startDetached
	}
	out := b.Out
	if out == nil {
		out = os.Stdout
	}

	err := openDesktop(url)
	if err == nil {
		log.Debug("Opened authorization URL with the desktop browser")
		return nil
	}
	log.WithError(err).Debug("Desktop browser unavailable")

	if b.Command != "" {
		err = startCmd(b.Command, url)
		if err == nil {
			log.WithField("browser", b.Command).Debug("Opened authorization URL")
			return nil
		}
		log.WithError(err).WithField("browser", b.Command).Debug("Browser command failed")
	}

	fmt.Fprintln(out, "Please open the following URL in your browser:")
	fmt.Fprintln(out, "  "+url)
	return nil
}

func openWithDesktop(url string) error {
	// keep xdg-open and friends quiet on the console
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
