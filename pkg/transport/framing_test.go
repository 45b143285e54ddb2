package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	framer := NewFramer(&buf)

	messages := [][]byte{
		[]byte("a"),
		[]byte("hello, peer"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, msg := range messages {
		require.NoError(t, framer.WriteFrame(msg))
	}
	for _, want := range messages {
		got, err := framer.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFrameWriterRejectsEmptyMessage(t *testing.T) {
	fw := NewFrameWriter(&bytes.Buffer{})
	assert.ErrorIs(t, fw.WriteFrame(nil), ErrMessageEmpty)
}

func TestFrameWriterRejectsOversizedMessage(t *testing.T) {
	fw := NewFrameWriterWithMaxSize(&bytes.Buffer{}, 16)
	err := fw.WriteFrame(bytes.Repeat([]byte{1}, 17))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestFrameReaderRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFrameWriter(&buf).WriteFrame(bytes.Repeat([]byte{1}, 64)))

	fr := NewFrameReaderWithMaxSize(&buf, 16)
	_, err := fr.ReadFrame()
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestFrameReaderTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFrameWriter(&buf).WriteFrame([]byte("truncate me")))

	// Drop the final byte of the payload.
	data := buf.Bytes()[:buf.Len()-1]
	fr := NewFrameReader(bytes.NewReader(data))
	_, err := fr.ReadFrame()
	assert.ErrorIs(t, err, ErrFrameTruncated)
}

func TestFrameReaderEOF(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(nil))
	_, err := fr.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, LengthPrefixSize+100, FrameSize(100))
}
