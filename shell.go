package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"library-circulation/library"

	"golang.org/x/term"
)

const historyShown = 10

// shell is the interactive front end. Prompts are only printed when stdin is a terminal.
type shell struct {
	ctx         context.Context
	mgr         *library.LibraryManager
	sc          *bufio.Scanner
	out         io.Writer
	interactive bool
}

func runShell(ctx context.Context, cfg library.Config, mgr *library.LibraryManager, in io.Reader, out io.Writer) error {
	sh := &shell{
		ctx:         ctx,
		mgr:         mgr,
		sc:          bufio.NewScanner(in),
		out:         out,
		interactive: isTerminal(in),
	}

	mgr.StartAutoProcessing(ctx, cfg.TickInterval, cfg.FirstTick)
	defer mgr.StopAutoProcessing()

	if sh.interactive {
		sh.printHelp()
	}

	for {
		sh.prompt("\n> ")
		if !sh.sc.Scan() {
			return sh.sc.Err()
		}
		cmd := strings.TrimSpace(sh.sc.Text())

		switch cmd {
		case "":
			continue
		case "add book":
			sh.handleAddBook()
		case "edit book":
			sh.handleEditBook()
		case "delete book":
			sh.handleDeleteBook()
		case "list books":
			printBooks(sh.out, mgr.ListBooks())
		case "search book":
			sh.handleSearchBooks()
		case "borrow":
			sh.handleBorrow()
		case "queue":
			sh.handleQueue()
		case "process":
			sh.handleProcess()
		case "return":
			sh.handleReturn()
		case "undo":
			sh.handleUndo()
		case "history":
			sh.handleHistory()
		case "export":
			sh.handleExport()
		case "help":
			sh.printHelp()
		case "exit":
			fmt.Fprintln(sh.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(sh.out, "Unknown command. Type 'help' to see the available commands.")
		}
	}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (sh *shell) printHelp() {
	fmt.Fprintln(sh.out, "Library circulation shell. Borrow requests are processed in the background.")
	fmt.Fprintln(sh.out, "Available commands:")
	fmt.Fprintln(sh.out, "  Books: add book, edit book, delete book, list books, search book")
	fmt.Fprintln(sh.out, "  Circulation: borrow, queue, process, return")
	fmt.Fprintln(sh.out, "  History: history, undo")
	fmt.Fprintln(sh.out, "  System: export, help, exit")
}

func (sh *shell) prompt(p string) {
	if sh.interactive {
		fmt.Fprint(sh.out, p)
	}
}

// ask prints the prompt and returns the next trimmed line.
func (sh *shell) ask(p string) (string, bool) {
	sh.prompt(p)
	if !sh.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.sc.Text()), true
}

// askInt reads a number; an empty line yields (0, false, true) so edits can skip a field.
func (sh *shell) askInt(p string) (n int, set bool, ok bool) {
	s, ok := sh.ask(p)
	if !ok {
		return 0, false, false
	}
	if s == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(sh.out, "Invalid number: %s\n", s)
		return 0, false, false
	}
	return n, true, true
}

func (sh *shell) handleAddBook() {
	var b library.Book
	var ok bool
	if b.ID, ok = sh.ask("Book ID: "); !ok {
		return
	}
	if b.Title, ok = sh.ask("Title: "); !ok {
		return
	}
	if b.Author, ok = sh.ask("Author: "); !ok {
		return
	}
	pages, _, ok := sh.askInt("Pages: ")
	if !ok {
		return
	}
	copies, set, ok := sh.askInt("Copies (default 1): ")
	if !ok {
		return
	}
	if !set {
		copies = 1
	}
	b.Pages, b.Copies = pages, copies

	if err := sh.mgr.AddBook(sh.ctx, b); err != nil {
		fmt.Fprintf(sh.out, "Error adding book: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Added book %s\n", b.ID)
}

func (sh *shell) handleEditBook() {
	id, ok := sh.ask("Book ID: ")
	if !ok {
		return
	}
	current, err := sh.mgr.GetBook(id)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}

	var patch library.BookPatch
	if s, ok := sh.ask(fmt.Sprintf("Title [%s]: ", current.Title)); !ok {
		return
	} else if s != "" {
		patch.Title = &s
	}
	if s, ok := sh.ask(fmt.Sprintf("Author [%s]: ", current.Author)); !ok {
		return
	} else if s != "" {
		patch.Author = &s
	}
	if n, set, ok := sh.askInt(fmt.Sprintf("Pages [%d]: ", current.Pages)); !ok {
		return
	} else if set {
		patch.Pages = &n
	}
	if n, set, ok := sh.askInt(fmt.Sprintf("Copies [%d]: ", current.Copies)); !ok {
		return
	} else if set {
		patch.Copies = &n
	}

	b, err := sh.mgr.UpdateBook(sh.ctx, id, patch)
	if err != nil {
		fmt.Fprintf(sh.out, "Error updating book: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Updated book %s: '%s' by %s\n", b.ID, b.Title, b.Author)
}

func (sh *shell) handleDeleteBook() {
	id, ok := sh.ask("Book ID: ")
	if !ok {
		return
	}
	b, err := sh.mgr.DeleteBook(sh.ctx, id)
	if err != nil {
		fmt.Fprintf(sh.out, "Error deleting book: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Deleted '%s' (%s)\n", b.Title, b.ID)
}

func (sh *shell) handleSearchBooks() {
	query, ok := sh.ask("Query: ")
	if !ok {
		return
	}
	books := sh.mgr.SearchBooks(query)
	if len(books) == 0 {
		fmt.Fprintf(sh.out, "No books found matching '%s'.\n", query)
		return
	}
	fmt.Fprintf(sh.out, "Found %d book(s) matching '%s':\n", len(books), query)
	printBooks(sh.out, sortByID(books))
}

func (sh *shell) handleBorrow() {
	id, ok := sh.ask("Book ID: ")
	if !ok {
		return
	}
	who, ok := sh.ask("Borrower name: ")
	if !ok {
		return
	}
	req, pos, err := sh.mgr.RequestBorrow(id, who)
	if err != nil {
		fmt.Fprintf(sh.out, "Error queueing request: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Request %s queued (position %d)\n", req.RequestID, pos)
}

func (sh *shell) handleQueue() {
	pending := sh.mgr.PendingRequests()
	if len(pending) == 0 {
		fmt.Fprintln(sh.out, "Queue is empty.")
		return
	}
	for i, r := range pending {
		fmt.Fprintf(sh.out, "%d. %s - %s - %s\n", i+1, r.RequestID, r.BookID, r.Requester)
	}
}

func (sh *shell) handleProcess() {
	res, err := sh.mgr.ProcessNext(sh.ctx)
	if errors.Is(err, library.ErrQueueEmpty) {
		fmt.Fprintln(sh.out, "Queue is empty.")
		return
	}
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	printStep(sh.out, res)
}

func (sh *shell) handleReturn() {
	id, ok := sh.ask("Book ID: ")
	if !ok {
		return
	}
	b, err := sh.mgr.ReturnBook(sh.ctx, id)
	if err != nil {
		fmt.Fprintf(sh.out, "Error returning book: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Book '%s' returned, %d copies on the shelf\n", b.Title, b.Copies)
}

func (sh *shell) handleUndo() {
	e, err := sh.mgr.UndoLast(sh.ctx)
	switch {
	case errors.Is(err, library.ErrNothingToUndo):
		fmt.Fprintln(sh.out, "Nothing to undo.")
	case err != nil:
		fmt.Fprintf(sh.out, "Undo of '%s' could not be applied: %v\n", e.Describe(), err)
	default:
		fmt.Fprintf(sh.out, "Undone: %s\n", e.Describe())
	}
}

func (sh *shell) handleHistory() {
	entries := sh.mgr.History(historyShown)
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, "History is empty.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(sh.out, "%s - %s\n", e.Time().Format("2006-01-02 15:04:05"), e.Describe())
	}
}

func (sh *shell) handleExport() {
	path, ok := sh.ask("Export file: ")
	if !ok || path == "" {
		return
	}
	if err := exportToFile(sh.mgr, path); err != nil {
		fmt.Fprintf(sh.out, "Error exporting: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Catalogue exported to %s\n", path)
}

func printStep(w io.Writer, res library.StepResult) {
	fmt.Fprintln(w, stepLine(res))
}

func stepLine(res library.StepResult) string {
	if res.Outcome == library.OutcomeBorrowed {
		return fmt.Sprintf("Processed: %s borrowed %s", res.Request.Requester, res.Request.BookID)
	}
	return fmt.Sprintf("Failed: %s could not borrow %s (%s)", res.Request.Requester, res.Request.BookID, res.Outcome)
}

// syncWriter lets the background tick observer and the shell loop share one
// output stream. Each Write lands whole.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func sortByID(books []library.Book) []library.Book {
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}
