package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stlalpha/pocketscene/internal/storage"
)

var sortFlags = map[string]storage.SortMode{
	"name":      storage.SortName,
	"name-desc": storage.SortNameDesc,
	"dirs":      storage.SortDirsFirst,
	"newest":    storage.SortNewest,
}

func newLsCmd(a *app) *cobra.Command {
	var sortName string
	cmd := &cobra.Command{
		Use:   "ls [DIR]",
		Short: "List a script directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			mode, ok := sortFlags[sortName]
			if !ok {
				return fmt.Errorf("unknown sort mode %q", sortName)
			}

			fs, err := storage.New(a.cfg.RootDir)
			if err != nil {
				return err
			}
			names, err := fs.List(dir, mode)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sortName, "sort", "name", "sort mode: name, name-desc, dirs or newest")
	return cmd
}
