/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var eid string
var eidMask uint8
var ttl uint32
var rlocs []string

type locator struct {
	Address  string `json:"address"`
	Priority uint8  `json:"priority"`
	Weight   uint8  `json:"weight"`
}

type eidRecord struct {
	EID        string    `json:"eid"`
	MaskLength uint8     `json:"mask-length"`
	TTL        uint32    `json:"ttl,omitempty"`
	Locators   []locator `json:"locators"`
}

// localEIDCmd represents the local-eid command
var localEIDCmd = &cobra.Command{
	Use:   "local-eid",
	Short: "manage the device local EID database",
}

// localEIDGetCmd represents the local-eid get command
var localEIDGetCmd = &cobra.Command{
	Use:          "get",
	Short:        "show the device local EID database",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, devicePath(deviceID, "local-db"), datastoreQuery(), nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

// localEIDAddCmd represents the local-eid add command
var localEIDAddCmd = &cobra.Command{
	Use:          "add",
	Short:        "add or merge a local EID record",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLocalEID(cmd, http.MethodPost)
	},
}

// localEIDRemoveCmd represents the local-eid remove command
var localEIDRemoveCmd = &cobra.Command{
	Use:          "remove",
	Short:        "remove a local EID record",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLocalEID(cmd, http.MethodDelete)
	},
}

func init() {
	rootCmd.AddCommand(localEIDCmd)
	localEIDCmd.AddCommand(localEIDGetCmd, localEIDAddCmd, localEIDRemoveCmd)

	addDeviceFlags(localEIDGetCmd)
	for _, c := range []*cobra.Command{localEIDAddCmd, localEIDRemoveCmd} {
		c.Flags().StringVar(&deviceID, "device", "", "device id, netconf:<ip>:<port>")
		c.Flags().StringVar(&eid, "eid", "", "EID IPv4 prefix address")
		c.Flags().Uint8Var(&eidMask, "mask", 0, "EID prefix length")
		c.Flags().Uint32Var(&ttl, "ttl", 0, "record TTL in minutes, 0 for the default")
		c.Flags().StringArrayVar(&rlocs, "rloc", nil, "locator as <address>[,<priority>,<weight>], repeatable")
		c.MarkFlagRequired("device")
		c.MarkFlagRequired("eid")
		c.MarkFlagRequired("mask")
		c.MarkFlagRequired("rloc")
	}
}

func runLocalEID(cmd *cobra.Command, method string) error {
	rec := eidRecord{
		EID:        eid,
		MaskLength: eidMask,
		TTL:        ttl,
	}
	for _, r := range rlocs {
		l, err := parseLocator(r)
		if err != nil {
			return err
		}
		rec.Locators = append(rec.Locators, l)
	}
	b, err := do(cmd.Context(), method, devicePath(deviceID, "local-db"), nil, rec)
	if err != nil {
		return err
	}
	printResponse(b)
	return nil
}

// parseLocator parses <address>[,<priority>,<weight>].
func parseLocator(s string) (locator, error) {
	fields := strings.Split(s, ",")
	l := locator{Address: strings.TrimSpace(fields[0])}
	switch len(fields) {
	case 1:
	case 3:
		p, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 8)
		if err != nil {
			return l, fmt.Errorf("invalid locator priority %q", fields[1])
		}
		w, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 8)
		if err != nil {
			return l, fmt.Errorf("invalid locator weight %q", fields[2])
		}
		l.Priority, l.Weight = uint8(p), uint8(w)
	default:
		return l, fmt.Errorf("invalid locator %q, expected <address>[,<priority>,<weight>]", s)
	}
	return l, nil
}
