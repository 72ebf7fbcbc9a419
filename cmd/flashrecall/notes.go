package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashrecall/internal/notes"
	"github.com/verte-zerg/flashrecall/internal/store"
)

var (
	notesCategory string
	notesReplace  bool
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage mnemonic notes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notes by category",
		Args:  cobra.NoArgs,
		RunE: withBook(false, func(cmd *cobra.Command, book *notes.Book, _ []string) error {
			return printBook(cmd.OutOrStdout(), book)
		}),
	}

	add := &cobra.Command{
		Use:   "add WORD DESCRIPTION",
		Short: "Add a note, or replace the note for the same word with --replace",
		Args:  cobra.ExactArgs(2),
		RunE: withBook(true, func(_ *cobra.Command, book *notes.Book, args []string) error {
			if notesReplace {
				return book.Upsert(notesCategory, args[0], args[1])
			}
			return book.Add(notesCategory, args[0], args[1])
		}),
	}
	add.Flags().StringVarP(&notesCategory, "category", "c", notes.DefaultCategories[0], "category name")
	add.Flags().BoolVar(&notesReplace, "replace", false, "replace an existing note for the word")

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find notes whose word contains QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: withBook(false, func(cmd *cobra.Command, book *notes.Book, args []string) error {
			for _, hit := range book.Search(args[0]) {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", hit.Category, hit.Index+1, hit.Note.Word, hit.Note.Desc); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		}),
	}

	rm := &cobra.Command{
		Use:   "rm CATEGORY INDEX",
		Short: "Remove the INDEX-th note (1-based, as shown by list) from CATEGORY",
		Args:  cobra.ExactArgs(2),
		RunE: withBook(true, func(_ *cobra.Command, book *notes.Book, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid note index %q", args[1])
			}
			return book.RemoveNote(args[0], index-1)
		}),
	}

	category := &cobra.Command{
		Use:   "category",
		Short: "Manage note categories",
	}
	categoryAdd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: withBook(true, func(_ *cobra.Command, book *notes.Book, args []string) error {
			if !book.AddCategory(args[0]) {
				return fmt.Errorf("category %q already exists or is empty", args[0])
			}
			return nil
		}),
	}
	categoryRm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a category and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: withBook(true, func(_ *cobra.Command, book *notes.Book, args []string) error {
			return book.RemoveCategory(args[0])
		}),
	}
	category.AddCommand(categoryAdd, categoryRm)

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all notes with a JSON export (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: withBook(true, func(cmd *cobra.Command, book *notes.Book, args []string) error {
			if args[0] == "-" {
				return book.Import(cmd.InOrStdin())
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open notes file: %w", err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil {
					// Best-effort close.
					_ = cerr
				}
			}()
			return book.Import(f)
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all notes as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: withBook(false, func(cmd *cobra.Command, book *notes.Book, _ []string) error {
			return book.Export(cmd.OutOrStdout())
		}),
	}

	cmd.AddCommand(list, add, search, rm, category, importCmd, exportCmd)
	return cmd
}

// withBook loads the notes book, runs fn and saves the book back when save is
// set and fn succeeded.
func withBook(save bool, fn func(cmd *cobra.Command, book *notes.Book, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		book, err := loadBook(ctx, st)
		if err != nil {
			return err
		}
		if err := fn(cmd, book, args); err != nil {
			return err
		}
		if !save {
			return nil
		}
		return saveBook(ctx, st, book)
	}
}

func saveBook(ctx context.Context, st *store.Store, book *notes.Book) error {
	if err := st.SaveNotes(ctx, book.Categories()); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

func printBook(w io.Writer, book *notes.Book) error {
	for _, c := range book.Categories() {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", c.Name, len(c.Notes)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for i, n := range c.Notes {
			if _, err := fmt.Fprintf(w, "  %d. %s: %s\n", i+1, n.Word, n.Desc); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}
