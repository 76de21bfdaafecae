/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

// getConfigCmd represents the get-config command
var getConfigCmd = &cobra.Command{
	Use:          "get-config",
	Short:        "show the device configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, devicePath(deviceID, "config"), datastoreQuery(), nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

// intendedCmd represents the intended command
var intendedCmd = &cobra.Command{
	Use:          "intended",
	Short:        "show the intended LISP state kept for the device",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, devicePath(deviceID, "intended"), nil, nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:          "sync",
	Short:        "push the intended LISP state to the device again",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodPost, devicePath(deviceID, "sync"), datastoreQuery(), nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getConfigCmd)
	rootCmd.AddCommand(intendedCmd)
	rootCmd.AddCommand(syncCmd)

	addDeviceFlags(getConfigCmd)
	addDeviceFlags(syncCmd)
	intendedCmd.Flags().StringVar(&deviceID, "device", "", "device id, netconf:<ip>:<port>")
	intendedCmd.MarkFlagRequired("device")
}
