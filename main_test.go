package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"library-circulation/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestShellSession(t *testing.T) {
	t.Setenv("LIBRARY_FIRST_TICK", "1h")
	db := filepath.Join(t.TempDir(), "lib.json")

	input := strings.Join([]string{
		"borrow", "B003", "Ana",
		"borrow", "B003", "Budi",
		"queue",
		"process",
		"process",
		"process",
		"history",
		"undo",
		"undo",
		"list books",
		"bogus",
		"exit",
	}, "\n")
	out := runCLI(t, input, "--backend", "json", "--db", db, "--tick", "1h")

	assert.Contains(t, out, "(position 2)")
	assert.Contains(t, out, "Processed: Ana borrowed B003")
	assert.Contains(t, out, "Failed: Budi could not borrow B003 (no copies available)")
	assert.Contains(t, out, "Queue is empty.")
	assert.Contains(t, out, "borrow B003 by Budi failed")
	assert.Contains(t, out, "Undone: borrow B003 by Ana")
	assert.Contains(t, out, "Unknown command.")
	assert.Contains(t, out, "Goodbye!")
}

// lockedBuffer can be read by the test while the shell is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShellSharesOutputWithAutoProcessing(t *testing.T) {
	t.Setenv("LIBRARY_FIRST_TICK", "1ms")
	db := filepath.Join(t.TempDir(), "lib.json")

	stdin, feed := io.Pipe()
	var out lockedBuffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--backend", "json", "--db", db, "--tick", "2ms"})
	cmd.SetIn(stdin)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	errc := make(chan error, 1)
	go func() { errc <- cmd.Execute() }()

	_, err := io.WriteString(feed, "borrow\nB003\nAna\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[auto] Processed: Ana borrowed B003\n")
	}, 2*time.Second, time.Millisecond)

	_, err = io.WriteString(feed, "queue\nexit\n")
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.NoError(t, feed.Close())

	assert.Contains(t, out.String(), "Queue is empty.")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestSyncWriterKeepsLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	w := &syncWriter{w: &buf}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				fmt.Fprintf(w, "writer %d line %d\n", g, i)
			}
		}(g)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 200)
	for _, l := range lines {
		assert.Regexp(t, `^writer \d line \d+$`, l)
	}
}

func TestOneShotCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lib.db")

	out := runCLI(t, "", "--db", db, "add", "B004", "--title", "Jaringan Komputer", "--author", "Dewi", "--pages", "150")
	assert.Contains(t, out, "Added book B004")

	out = runCLI(t, "", "--db", db, "search", "dewi")
	assert.Contains(t, out, "Jaringan Komputer")

	out = runCLI(t, "", "--db", db, "return", "B004")
	assert.Contains(t, out, "2 copies on the shelf")

	exported := filepath.Join(t.TempDir(), "books.txt")
	runCLI(t, "", "--db", db, "export", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "B004\tJaringan Komputer\tDewi\t150\t2\n")

	out = runCLI(t, "", "--db", db, "delete", "B004")
	assert.Contains(t, out, "Deleted 'Jaringan Komputer'")

	out = runCLI(t, "", "--db", db, "list")
	assert.NotContains(t, out, "B004")
	assert.Contains(t, out, "B001")
}

func TestPrintBooksTruncatesOnRunes(t *testing.T) {
	title := strings.Repeat("é", 40)
	var out bytes.Buffer
	printBooks(&out, []library.Book{{ID: "B050", Title: title, Author: "Zoë", Pages: 10, Copies: 1}})

	assert.Contains(t, out.String(), strings.Repeat("é", 27)+"...")
	assert.True(t, utf8.ValidString(out.String()))
}
