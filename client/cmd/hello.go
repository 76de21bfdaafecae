/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

// helloCmd represents the hello command
var helloCmd = &cobra.Command{
	Use:          "hello",
	Short:        "show the server name and version",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, "/hello", nil, nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(helloCmd)
}
