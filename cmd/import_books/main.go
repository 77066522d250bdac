package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"library-circulation/library"

	"github.com/spf13/cobra"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var (
		dbPath, backend string
		skipExisting    bool
	)

	cmd := &cobra.Command{
		Use:          "import_books FILE",
		Short:        "Import books from a tab-separated export file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := importConfig(dbPath, backend)
			if err != nil {
				return err
			}
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			books, err := library.ParseExport(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			mgr, err := library.OpenLibraryManager(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open catalogue: %w", err)
			}
			defer mgr.Close()

			return importBooks(cmd.Context(), cmd.OutOrStdout(), mgr, books, skipExisting)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the catalogue store (env LIBRARY_DB)")
	cmd.Flags().StringVar(&backend, "backend", "", "storage backend: sqlite or json (env LIBRARY_BACKEND)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "skip books whose id is already catalogued instead of counting them as errors")
	return cmd
}

// importConfig reads the same environment as librarian so both tools open
// the same store; non-empty flags win.
func importConfig(dbPath, backend string) (library.Config, error) {
	cfg, err := library.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	return cfg, cfg.Validate()
}

func importBooks(ctx context.Context, w io.Writer, mgr *library.LibraryManager, books []library.Book, skipExisting bool) error {
	fmt.Fprintf(w, "Importing %d book(s)...\n", len(books))

	successCount, skipCount, errorCount := 0, 0, 0
	for _, b := range books {
		fmt.Fprintf(w, "Importing: %s by %s... ", b.Title, b.Author)
		err := mgr.AddBook(ctx, b)
		switch {
		case err == nil:
			fmt.Fprintf(w, "SUCCESS (ID: %s)\n", b.ID)
			successCount++
		case skipExisting && errors.Is(err, library.ErrDuplicateID):
			fmt.Fprintln(w, "SKIPPED - already catalogued")
			skipCount++
		default:
			fmt.Fprintf(w, "ERROR - %v\n", err)
			errorCount++
		}
	}

	fmt.Fprintf(w, "\nImport complete!\n")
	fmt.Fprintf(w, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(w, "Skipped: %d\n", skipCount)
	fmt.Fprintf(w, "Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Fprintln(w, "\nCatalogue:")
		fmt.Fprintf(w, "%-8s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Fprintln(w, strings.Repeat("-", 90))
		for _, b := range mgr.ListBooks() {
			fmt.Fprintf(w, "%-8s %-50s %-30s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
		}
	}
	if errorCount > 0 {
		return fmt.Errorf("%d book(s) failed to import", errorCount)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
