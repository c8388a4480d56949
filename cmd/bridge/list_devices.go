package main

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"render-bridge/config"
	"render-bridge/vulkan"
)

// ListDevices prints the Vulkan devices of this system.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return err
	}

	icfg := vulkan.DefaultInstanceConfig()
	icfg.EnableValidation = cfg.Vulkan.Validation
	instance, err := vulkan.NewInstance(icfg)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	devices, err := vulkan.EnumerateDevices(instance)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Name", "Type", "API", "Max image", vulkan.ExternalMemoryFdExtension, "Usable"})
	for i, d := range devices {
		table.Append([]string{
			fmt.Sprintf("%02d", i),
			d.Name,
			d.Type,
			vulkan.VersionString(d.APIVersion),
			fmt.Sprintf("%d", d.MaxImageSize),
			yesNo(d.ExportSupport),
			yesNo(d.Usable()),
		})
	}
	table.Render()

	fmt.Printf("\nSystem provides %d Vulkan device(s):\n\n%s", len(devices), buf.String())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
