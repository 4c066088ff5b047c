package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/khoward/debtscan/internal/adapters/treesitter"
	"github.com/khoward/debtscan/internal/domain/lang"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the scanner understands",
	Long: `Lists every language in the extension table. Languages marked verified
have a compiled-in grammar for syntax-tree verification; installed grammar
shared libraries under .debtscan/grammars are listed at the end.`,
	Run: func(cmd *cobra.Command, args []string) {
		names := lang.NewRegistry().Names()
		sort.Strings(names)
		for _, n := range names {
			if treesitter.HasBuiltinGrammar(n) {
				fmt.Printf("%-12s (verified)\n", n)
			} else {
				fmt.Println(n)
			}
		}

		loader := treesitter.NewDynamicLoader(treesitter.DefaultGrammarPaths(projectRoot()))
		if installed := loader.InstalledGrammars(); len(installed) > 0 {
			sort.Strings(installed)
			fmt.Printf("\ninstalled grammar libraries: %v\n", installed)
		}
	},
}
