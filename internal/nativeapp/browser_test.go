package nativeapp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemBrowser(t *testing.T) {
	const authURL = "https://accounts.example.com/o/oauth2/auth?client_id=abc"
	errNoDisplay := errors.New("no display")

	testCases := []struct {
		name           string
		command        string
		desktopErr     error
		commandErr     error
		expectCommand  bool
		expectPrintout bool
	}{
		{name: "desktop opener works", command: "google-chrome"},
		{name: "falls back to command", command: "google-chrome", desktopErr: errNoDisplay, expectCommand: true},
		{name: "prints when command fails", command: "google-chrome", desktopErr: errNoDisplay, commandErr: errors.New("not found"), expectCommand: true, expectPrintout: true},
		{name: "prints without command", desktopErr: errNoDisplay, expectPrintout: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var commandArgs []string

			b := NewSystemBrowser(tt.command, &out)
			b.openDesktop = func(url string) error {
				assert.Equal(t, authURL, url)
				return tt.desktopErr
			}
			b.startCmd = func(name string, args ...string) error {
				commandArgs = append([]string{name}, args...)
				return tt.commandErr
			}

			assert.NoError(t, b.Open(authURL))

			if tt.expectCommand {
				assert.Equal(t, []string{tt.command, authURL}, commandArgs)
			} else {
				assert.Nil(t, commandArgs)
			}
			if tt.expectPrintout {
				assert.Contains(t, out.String(), "Please open the following URL in your browser:")
				assert.Contains(t, out.String(), authURL)
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}
