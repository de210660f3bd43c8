package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/watchdog/internal/transport"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// listPorts is replaced in tests.
var listPorts = transport.ListPorts

// portsCommand prints the serial devices found on this machine.
func portsCommand(out io.Writer) error {
	ports, err := listPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No serial ports found. Is the board plugged in?"))
		return nil
	}

	columns := []ui.TableColumn{
		{Title: "Port", Width: 24},
		{Title: "USB", Width: 11},
		{Title: "Product", Width: 28},
		{Title: "Serial", Width: 20},
	}
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		usb := "-"
		if p.IsUSB {
			usb = p.VID + ":" + p.PID
		}
		rows = append(rows, []string{p.Name, usb, p.Product, p.Serial})
	}

	fmt.Fprintln(out, ui.RenderSimpleTable(columns, rows))
	fmt.Fprintln(out, ui.MutedStyle().Render("Use one with --port or 'watchdog config set port <device>'"))
	return nil
}
