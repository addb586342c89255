package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l1jgo/itemforge/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize NAME...",
	Short: "Print the words and hashes of item names",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		for _, name := range args {
			res := token.Tokenize(name)
			fmt.Printf("%s\n", name)
			for _, w := range res.Words {
				fmt.Printf("  %-20s %016x\n", w, res.Hash[w])
			}
		}
	},
}
