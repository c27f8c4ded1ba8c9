package corpus

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseEntriesMatchesColumnsCaseInsensitively(t *testing.T) {
	input := " Question , ANSWER \nHow do I open an account?,Visit any branch with ID.\n"

	entries, err := ParseEntries(strings.NewReader(input), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "How do I open an account?", entries[0].Question)
	require.Equal(t, "Visit any branch with ID.", entries[0].Answer)
}

func TestParseEntriesDropsIncompleteRows(t *testing.T) {
	input := "question,answer\n" +
		"first question,first answer\n" +
		",orphan answer\n" +
		"orphan question,\n" +
		"   ,   \n" +
		"second question,second answer\n"

	entries, err := ParseEntries(strings.NewReader(input), EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// surviving rows keep their original order
	require.Equal(t, "first question", entries[0].Question)
	require.Equal(t, "second question", entries[1].Question)
}

func TestParseEntriesFailsOnMissingColumn(t *testing.T) {
	input := "question,reply\nq,a\n"
	_, err := ParseEntries(strings.NewReader(input), EncodingUTF8)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required columns")
}

func TestParseEntriesFailsWhenAllRowsFiltered(t *testing.T) {
	input := "question,answer\n,\n ,\n"
	_, err := ParseEntries(strings.NewReader(input), EncodingUTF8)
	require.Error(t, err)
}

func TestParseEntriesDecodesWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid UTF-8 on its own
	raw := append([]byte("question,answer\ncaf"), 0xE9)
	raw = append(raw, []byte(" hours?,Open 9-5.\n")...)

	entries, err := ParseEntries(strings.NewReader(string(raw)), EncodingCP1252)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "café hours?", entries[0].Question)
}

func TestParseEntriesRejectsUnknownEncoding(t *testing.T) {
	_, err := ParseEntries(strings.NewReader("question,answer\nq,a\n"), "ebcdic")
	require.Error(t, err)
}

func TestFileSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.csv")
	require.NoError(t, os.WriteFile(path, []byte("question,answer\nq1,a1\nq2,a2\n"), 0o644))

	source := NewFileSource(path, EncodingUTF8, discardLogger())
	entries, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestFileSourceLoadMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), EncodingUTF8, discardLogger())
	_, err := source.Load(context.Background())
	require.Error(t, err)
}
