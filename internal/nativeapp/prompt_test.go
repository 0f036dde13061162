package nativeapp

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptReceiver(t *testing.T) {
	var out bytes.Buffer
	receiver := &PromptReceiver{In: strings.NewReader("\n  \n4/pasted-code \n"), Out: &out}

	redirectURI, err := receiver.Start()
	require.NoError(t, err)
	assert.Equal(t, OOBRedirectURI, redirectURI)

	code, err := receiver.WaitForCode(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "4/pasted-code", code)
	assert.Equal(t, 3, strings.Count(out.String(), "Please enter code: "))
	assert.NoError(t, receiver.Stop())
}

func TestPromptReceiverEOF(t *testing.T) {
	receiver := &PromptReceiver{In: strings.NewReader(""), Out: io.Discard}

	_, err := receiver.WaitForCode(testContext(t))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPromptReceiverCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	receiver := &PromptReceiver{In: reader, Out: io.Discard}

	ctx, cancel := context.WithTimeout(testContext(t), 50*time.Millisecond)
	defer cancel()

	_, err := receiver.WaitForCode(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
