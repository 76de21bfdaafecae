/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iptecharch/lisp-config/pkg/lisp"
)

var deviceAddress string
var devicePort uint16
var username string
var password string

type deviceEntry struct {
	DeviceID lisp.DeviceID `json:"deviceId"`
}

type devicesResponse struct {
	Devices []deviceEntry `json:"devices"`
}

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:          "devices",
	Short:        "list the registered devices",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodGet, "/devices", nil, nil)
		if err != nil {
			return err
		}
		rsp := new(devicesResponse)
		if err = json.Unmarshal(b, rsp); err != nil {
			return err
		}
		printDevicesTable(rsp)
		return nil
	},
}

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:          "connect",
	Short:        "register a NETCONF device",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := url.Values{}
		q.Set("address", deviceAddress)
		q.Set("port", strconv.Itoa(int(devicePort)))
		if username != "" {
			q.Set("username", username)
		}
		if password != "" {
			q.Set("password", password)
		}
		b, err := do(cmd.Context(), http.MethodPost, "/devices", q, nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

// disconnectCmd represents the disconnect command
var disconnectCmd = &cobra.Command{
	Use:          "disconnect",
	Short:        "deregister a device and drop its intended state",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := do(cmd.Context(), http.MethodDelete, "/devices/"+url.PathEscape(deviceID), nil, nil)
		if err != nil {
			return err
		}
		printResponse(b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)

	connectCmd.Flags().StringVar(&deviceAddress, "ip", "", "device IP address")
	connectCmd.Flags().Uint16Var(&devicePort, "port", 830, "device NETCONF port")
	connectCmd.Flags().StringVarP(&username, "username", "u", "", "NETCONF username")
	connectCmd.Flags().StringVarP(&password, "password", "p", "", "NETCONF password")
	connectCmd.MarkFlagRequired("ip")

	disconnectCmd.Flags().StringVar(&deviceID, "device", "", "device id, netconf:<ip>:<port>")
	disconnectCmd.MarkFlagRequired("device")
}

func printDevicesTable(rsp *devicesResponse) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Device ID", "Address", "Port"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(toTableData(rsp))
	table.Render()
}

func toTableData(rsp *devicesResponse) [][]string {
	tableData := make([][]string, 0, len(rsp.Devices))
	for _, d := range rsp.Devices {
		port := ""
		if p := d.DeviceID.Port(); p != 0 {
			port = strconv.FormatUint(uint64(p), 10)
		}
		tableData = append(tableData, []string{d.DeviceID.String(), d.DeviceID.Address(), port})
	}
	return tableData
}
