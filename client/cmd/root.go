/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var addr string
var timeout time.Duration
var debug bool

var deviceID string
var target string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lispctl",
	Short: "configure LISP devices through the lispconfig REST API",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "address", "a", "http://localhost:8181", "lispconfig server address")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log HTTP requests")
}

// addDeviceFlags adds the flags selecting the device and its datastore.
func addDeviceFlags(c *cobra.Command) {
	c.Flags().StringVar(&deviceID, "device", "", "device id, netconf:<ip>:<port>")
	c.Flags().StringVar(&target, "target", "", "datastore, running or candidate")
	c.MarkFlagRequired("device")
}
