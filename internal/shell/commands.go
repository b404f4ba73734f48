package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/srg/flossctl/internal/bt"
)

const maxNameWidth = 40

type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(s *Shell, args []string) error
}

func (s *Shell) register() {
	s.order = []*command{
		{name: "help", usage: "help", help: "show this help", run: cmdHelp},
		{name: "adapter", usage: "adapter enable|disable|show", help: "power the adapter or show its state", run: cmdAdapter},
		{name: "address", usage: "address", help: "query the local adapter address", run: cmdAddress},
		{name: "discovery", usage: "discovery start|stop", help: "control device discovery", run: cmdDiscovery},
		{name: "devices", usage: "devices [--json]", help: "list devices found during discovery", run: cmdDevices},
		{name: "bond", usage: "bond <address>", help: "create a bond with a device", run: cmdBond},
		{name: "connect", usage: "connect <address>", help: "connect all enabled profiles", run: cmdConnect},
		{name: "disconnect", usage: "disconnect <address>", help: "disconnect all enabled profiles", run: cmdDisconnect},
		{name: "gatt", usage: "gatt register-client|unregister-client", help: "manage the GATT client registration", run: cmdGatt},
		{name: "events", usage: "events [count]", help: "replay buffered events", run: cmdEvents},
		{name: "quit", aliases: []string{"exit"}, usage: "quit", help: "leave the console", run: cmdQuit},
	}

	s.commands = make(map[string]*command, len(s.order))
	for _, c := range s.order {
		s.commands[c.name] = c
		for _, alias := range c.aliases {
			s.commands[alias] = c
		}
	}
}

func cmdHelp(s *Shell, _ []string) error {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, c := range s.order {
		usage := c.usage
		if len(c.aliases) > 0 {
			usage += ", " + strings.Join(c.aliases, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\n", usage, c.help)
	}
	return w.Flush()
}

func cmdQuit(s *Shell, _ []string) error {
	s.quit = true
	return nil
}

func cmdAdapter(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: adapter enable|disable|show")
	}
	switch args[0] {
	case "enable":
		return s.manager.Start(s.hci)
	case "disable":
		return s.manager.Stop(s.hci)
	case "show":
		return s.showAdapter()
	default:
		return fmt.Errorf("unknown adapter action %q", args[0])
	}
}

func (s *Shell) showAdapter() error {
	enabled, tracked := s.ctx.AdapterState(s.hci)

	// The daemon is asked directly so a stale session view is visible.
	daemonState := "unknown"
	if daemonEnabled, err := s.manager.AdapterEnabled(s.hci); err == nil {
		daemonState = strconv.FormatBool(daemonEnabled)
	} else {
		s.log.WithError(err).Debug("Adapter enabled query failed")
	}

	address := s.ctx.AdapterAddress()
	if address == "" {
		address = "unknown"
	}

	gattClient := "unregistered"
	if id, ok := s.ctx.GattClientID(); ok {
		gattClient = strconv.FormatInt(int64(id), 10)
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "hci%d\n", s.hci)
	fmt.Fprintf(w, "  present:\t%t\n", tracked)
	fmt.Fprintf(w, "  enabled:\t%t\n", enabled)
	fmt.Fprintf(w, "  daemon enabled:\t%s\n", daemonState)
	fmt.Fprintf(w, "  address:\t%s\n", address)
	fmt.Fprintf(w, "  discovering:\t%t\n", s.ctx.Discovering())
	fmt.Fprintf(w, "  gatt client:\t%s\n", gattClient)

	adapters := s.ctx.Adapters()
	if len(adapters) > 0 {
		indexes := make([]int32, 0, len(adapters))
		for hci := range adapters {
			indexes = append(indexes, hci)
		}
		sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

		fmt.Fprintln(w, "\nHCI\tENABLED")
		for _, hci := range indexes {
			fmt.Fprintf(w, "hci%d\t%t\n", hci, adapters[hci])
		}
	}
	return w.Flush()
}

func cmdAddress(s *Shell, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: address")
	}
	address, err := s.adapter.Address()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Local address = %s\n", address)
	return nil
}

func cmdDiscovery(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: discovery start|stop")
	}
	switch args[0] {
	case "start":
		return s.adapter.StartDiscovery()
	case "stop":
		return s.adapter.CancelDiscovery()
	default:
		return fmt.Errorf("unknown discovery action %q", args[0])
	}
}

func cmdDevices(s *Shell, args []string) error {
	asJSON := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "--json":
		asJSON = true
	default:
		return errors.New("usage: devices [--json]")
	}

	devices := s.ctx.FoundDevices()
	if asJSON {
		encoder := json.NewEncoder(s.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Fprintln(s.out, "No devices found")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME")
	for _, d := range devices {
		name := d.Name
		if len(name) > maxNameWidth {
			name = name[:maxNameWidth-3] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\n", d.Address, name)
	}
	return w.Flush()
}

func cmdBond(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bond <address>")
	}
	d := s.deviceFor(args[0])

	// The attempt must be on record before the daemon can answer with a
	// consent request for it.
	s.ctx.SetBondingAttempt(d)
	accepted, err := s.adapter.CreateBond(d, bt.TransportAuto)
	if err != nil {
		s.ctx.ClearBondingAttempt()
		return err
	}
	if !accepted {
		s.ctx.ClearBondingAttempt()
		return fmt.Errorf("bonding with %s rejected by daemon", d.Address)
	}
	fmt.Fprintf(s.out, "Bonding with %s\n", d)
	return nil
}

func cmdConnect(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: connect <address>")
	}
	d := s.deviceFor(args[0])
	if err := s.adapter.ConnectAllEnabledProfiles(d); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Connecting profiles on %s\n", d)
	return nil
}

func cmdDisconnect(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: disconnect <address>")
	}
	d := s.deviceFor(args[0])
	if err := s.adapter.DisconnectAllEnabledProfiles(d); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Disconnecting profiles on %s\n", d)
	return nil
}

func cmdGatt(s *Shell, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gatt register-client|unregister-client")
	}
	switch args[0] {
	case "register-client":
		appUUID := uuid.NewString()
		if err := s.gatt.RegisterClient(appUUID, false); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Registering GATT client, app uuid = %s\n", appUUID)
		return nil
	case "unregister-client":
		id, ok := s.ctx.GattClientID()
		if !ok {
			return errors.New("no GATT client registered")
		}
		if err := s.gatt.UnregisterClient(id); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Unregistering GATT client %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown gatt action %q", args[0])
	}
}

func cmdEvents(s *Shell, args []string) error {
	limit := 0
	switch {
	case len(args) == 0:
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.New("usage: events [count]")
		}
		limit = n
	default:
		return errors.New("usage: events [count]")
	}

	events, err := s.collector.DrainAll()
	if err != nil {
		return err
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	if len(events) == 0 {
		fmt.Fprintln(s.out, "No events recorded")
		return nil
	}
	for _, e := range events {
		fmt.Fprintln(s.out, s.renderEvent(e))
	}
	return nil
}

// deviceFor resolves an address against the discovery results, falling
// back to a generic classic descriptor for devices never seen.
func (s *Shell) deviceFor(address string) bt.Device {
	if d, ok := s.ctx.FoundDevice(address); ok {
		return d
	}
	return bt.ClassicDevice(address)
}
