package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"library-circulation/library"

	"github.com/spf13/cobra"
)

func newListCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book, sorted by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, *flags, func(_ context.Context, _ library.Config, mgr *library.LibraryManager) error {
				printBooks(cmd.OutOrStdout(), mgr.ListBooks())
				return nil
			})
		},
	}
}

func newSearchCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find books by title or author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, *flags, func(_ context.Context, _ library.Config, mgr *library.LibraryManager) error {
				books := mgr.SearchBooks(args[0])
				if len(books) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No books found matching '%s'.\n", args[0])
					return nil
				}
				printBooks(cmd.OutOrStdout(), sortByID(books))
				return nil
			})
		},
	}
}

func newAddCmd(flags *cliFlags) *cobra.Command {
	var b library.Book
	cmd := &cobra.Command{
		Use:   "add ID",
		Short: "Add a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b.ID = args[0]
			return withManager(cmd, *flags, func(ctx context.Context, _ library.Config, mgr *library.LibraryManager) error {
				if err := mgr.AddBook(ctx, b); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added book %s\n", b.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&b.Title, "title", "", "book title")
	cmd.Flags().StringVar(&b.Author, "author", "", "book author")
	cmd.Flags().IntVar(&b.Pages, "pages", 0, "number of pages")
	cmd.Flags().IntVar(&b.Copies, "copies", 1, "copies on the shelf")
	return cmd
}

func newDeleteCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, *flags, func(ctx context.Context, _ library.Config, mgr *library.LibraryManager) error {
				b, err := mgr.DeleteBook(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted '%s' (%s)\n", b.Title, b.ID)
				return nil
			})
		},
	}
}

func newReturnCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "return ID",
		Short: "Return one copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, *flags, func(ctx context.Context, _ library.Config, mgr *library.LibraryManager) error {
				b, err := mgr.ReturnBook(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Book '%s' returned, %d copies on the shelf\n", b.Title, b.Copies)
				return nil
			})
		},
	}
}

func newExportCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the catalogue as tab-separated lines (stdout without FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, *flags, func(_ context.Context, _ library.Config, mgr *library.LibraryManager) error {
				if len(args) == 0 {
					return mgr.Export(cmd.OutOrStdout())
				}
				return exportToFile(mgr, args[0])
			})
		},
	}
}

func exportToFile(mgr *library.LibraryManager, path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := mgr.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books in library.")
		return
	}
	fmt.Fprintf(w, "%-8s %-30s %-25s %-6s %s\n", "ID", "Title", "Author", "Pages", "Copies")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------")
	for _, b := range books {
		fmt.Fprintf(w, "%-8s %-30s %-25s %-6d %d\n",
			b.ID, truncateString(b.Title, 30), truncateString(b.Author, 25), b.Pages, b.Copies)
	}
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
