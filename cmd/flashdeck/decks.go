package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/deck"
)

func newDecksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "List, show, import and delete decks",
	}
	cmd.AddCommand(newDecksListCmd(), newDecksShowCmd(), newDecksDeleteCmd(), newDecksImportCmd())
	return cmd
}

func newDecksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			decks, unsaved, err := a.decks.List(cmd.Context(), a.scope)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCARDS")
			for _, d := range decks {
				fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Cards)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if unsaved {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: some changes are not saved")
			}
			return nil
		},
	}
}

func newDecksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a deck in its editable text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			d, err := a.decks.Get(cmd.Context(), a.scope, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Text())
			return nil
		},
	}
}

func newDecksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			existed, err := a.decks.Delete(cmd.Context(), a.scope, args[0])
			if err != nil {
				return err
			}
			if !existed {
				fmt.Fprintf(cmd.OutOrStdout(), "no deck named %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newDecksImportCmd() *cobra.Command {
	var opts deck.SheetOptions

	cmd := &cobra.Command{
		Use:   "import <name> <file>",
		Short: "Create or replace a deck from a .txt, .csv or .xlsx file",
		Long: "Text files hold one \"question - answer\" pair per line. Spreadsheets and CSV\n" +
			"files hold the question in the first column and the answer in the second.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			cards, err := deck.ReadCardsFile(args[1], opts)
			if err != nil {
				return err
			}
			d, err := a.decks.Import(cmd.Context(), a.scope, args[0], cards)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards into %s\n", d.Len(), d.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "worksheet to read (default first sheet)")
	cmd.Flags().BoolVar(&opts.SkipHeader, "header", false, "skip the first row")
	return cmd
}
