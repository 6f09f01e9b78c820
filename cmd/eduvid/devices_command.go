package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"eduvid/internal/camera"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var sysfsRoot string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices in acquisition order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			devices, err := camera.Discover(sysfsRoot)
			if err != nil {
				return err
			}
			order := camera.Candidates(devices, cfg.Camera.Device)
			if jsonOutput {
				return writeJSON(cmd, struct {
					Devices []camera.Device `json:"devices"`
					Order   []string        `json:"order"`
				}{devices, order})
			}

			out := cmd.OutOrStdout()
			if len(order) == 0 {
				fmt.Fprintln(out, camera.UserMessage(camera.ErrNoDevice))
				return nil
			}
			byPath := make(map[string]camera.Device, len(devices))
			for _, d := range devices {
				byPath[d.Path] = d
			}
			rows := make([][]string, 0, len(order))
			for i, path := range order {
				d, found := byPath[path]
				name, facing := d.Name, string(d.Facing)
				if !found {
					name, facing = "(configured default)", "-"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), path, name, facing, yesNo(path == cfg.Camera.Device)})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "#", right: true},
				{title: "Device"},
				{title: "Name"},
				{title: "Facing"},
				{title: "Configured"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&sysfsRoot, "sysfs", camera.DefaultSysfsRoot, "video4linux sysfs directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}
