/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var resolver string

// mapResolverCmd represents the map-resolver command
var mapResolverCmd = &cobra.Command{
	Use:   "map-resolver",
	Short: "manage the device map-resolvers",
}

// mapResolverGetCmd represents the map-resolver get command
var mapResolverGetCmd = &cobra.Command{
	Use:          "get",
	Short:        "show the device map-resolvers",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, devicePath(deviceID, "map-resolver"), datastoreQuery(), nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

// mapResolverAddCmd represents the map-resolver add command
var mapResolverAddCmd = &cobra.Command{
	Use:          "add",
	Short:        "add a map-resolver",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMapResolver(cmd, http.MethodPost)
	},
}

// mapResolverRemoveCmd represents the map-resolver remove command
var mapResolverRemoveCmd = &cobra.Command{
	Use:          "remove",
	Short:        "remove a map-resolver",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMapResolver(cmd, http.MethodDelete)
	},
}

func init() {
	rootCmd.AddCommand(mapResolverCmd)
	mapResolverCmd.AddCommand(mapResolverGetCmd, mapResolverAddCmd, mapResolverRemoveCmd)

	addDeviceFlags(mapResolverGetCmd)
	for _, c := range []*cobra.Command{mapResolverAddCmd, mapResolverRemoveCmd} {
		addDeviceFlags(c)
		c.Flags().StringVar(&resolver, "resolver", "", "map-resolver IP address")
		c.MarkFlagRequired("resolver")
	}
}

func runMapResolver(cmd *cobra.Command, method string) error {
	q := datastoreQuery()
	q.Set("address", resolver)
	b, err := do(cmd.Context(), method, devicePath(deviceID, "map-resolver"), q, nil)
	if err != nil {
		return err
	}
	printResponse(b)
	return nil
}
