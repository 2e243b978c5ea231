package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vinayskanse/blocky/internal/backend"
	"github.com/vinayskanse/blocky/internal/config"
	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/schedule"
	"github.com/vinayskanse/blocky/internal/store"
)

const usage = `blocky - domain blocker front-end

Usage:
  blocky list                                  List groups
  blocky show <group>                          Show one group in detail
  blocky add <name> [domain...]                Create a group
  blocky domains <group> <domain...>           Replace a group's domains
  blocky schedule <group> <days> <start> <end> Set a schedule (days comma-separated)
  blocky schedule <group> clear                Clear a schedule
  blocky save <group> <name> <on|off> <days> <start> <end> [domain...]
                                               Apply a full edit in one go
                                               (use - for days to clear)
  blocky enable <group>                        Enable a group
  blocky disable <group>                       Disable a group
  blocky rm <group>                            Delete a group
  blocky export [file]                         Export groups as JSON (stdout by default)
  blocky import <file>                         Import groups from JSON
  blocky blocklist                             Show the active blocklist

Groups are addressed by name or by ID prefix.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	path, err := config.DefaultCLIConfigPath()
	if err != nil {
		fatal(err)
	}
	cfg, err := config.LoadCLI(path)
	if err != nil {
		fatal(err)
	}

	client := backend.NewHTTPClient(cfg.ServerURL, cfg.Timeout)
	groups := store.New(client)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	app := &app{store: groups, client: client}

	cmd, args := os.Args[1], os.Args[2:]
	if err := app.run(ctx, cmd, args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

type app struct {
	store  *store.GroupStore
	client *backend.HTTPClient
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.list(ctx)
	case "show":
		return a.show(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "domains":
		return a.domains(ctx, args)
	case "schedule":
		return a.schedule(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "enable":
		return a.setEnabled(ctx, args, true)
	case "disable":
		return a.setEnabled(ctx, args, false)
	case "rm":
		return a.remove(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "import":
		return a.importFile(ctx, args)
	case "blocklist":
		return a.blocklist(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run 'blocky help')", cmd)
	}
}

func (a *app) list(ctx context.Context) error {
	if err := a.store.FetchAll(ctx); err != nil {
		return err
	}
	groups := a.store.Groups()
	if len(groups) == 0 {
		fmt.Println("no groups")
		return nil
	}
	now := time.Now()
	for _, g := range groups {
		fmt.Printf("%-10s %-20s %-8s %-8s %d domain(s)\n",
			shortID(g.ID), g.Name, enabledLabel(g.Enabled), activeLabel(g, now), len(g.Domains))
	}
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	g, err := a.resolve(ctx, args, "show <group>")
	if err != nil {
		return err
	}
	fmt.Printf("ID:       %s\n", g.ID)
	fmt.Printf("Name:     %s\n", g.Name)
	fmt.Printf("Enabled:  %t\n", g.Enabled)
	fmt.Printf("Blocking: %t\n", schedule.IsActiveNow(*g, time.Now()))
	if g.Schedule != nil && !schedule.IsCleared(g.Schedule) {
		fmt.Printf("Schedule: %s %s-%s\n",
			strings.Join(g.Schedule.Days, ","), g.Schedule.Start, g.Schedule.End)
	} else {
		fmt.Println("Schedule: always on")
	}
	if len(g.Domains) == 0 {
		fmt.Println("Domains:  (none)")
		return nil
	}
	fmt.Println("Domains:")
	for _, d := range g.Domains {
		fmt.Printf("  %s\n", d)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: blocky add <name> [domain...]")
	}
	req := domain.CreateGroupRequest{
		Name:      args[0],
		Domains:   args[1:],
		Days:      []string{},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
	if err := a.store.Create(ctx, req); err != nil {
		return err
	}
	fmt.Printf("created group %q\n", args[0])
	return nil
}

func (a *app) domains(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blocky domains <group> <domain...>")
	}
	g, err := a.resolve(ctx, args[:1], "domains <group> <domain...>")
	if err != nil {
		return err
	}
	cleaned := schedule.NormalizeDomainText(strings.Join(args[1:], "\n"))
	if err := a.store.UpdateDomains(ctx, g.ID, cleaned); err != nil {
		return err
	}
	fmt.Printf("updated domains for %q\n", g.Name)
	return nil
}

func (a *app) schedule(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: blocky schedule <group> <days> <start> <end> | blocky schedule <group> clear")
	}
	g, err := a.resolve(ctx, args[:1], "schedule <group> ...")
	if err != nil {
		return err
	}

	if args[1] == "clear" {
		if err := a.store.UpdateSchedule(ctx, g.ID, schedule.ClearSchedule()); err != nil {
			return err
		}
		fmt.Printf("cleared schedule for %q\n", g.Name)
		return nil
	}

	if len(args) != 4 {
		return fmt.Errorf("usage: blocky schedule <group> <days> <start> <end>")
	}
	days := []string{}
	for _, d := range strings.Split(args[1], ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			days = append(days, d)
		}
	}
	schedule.SortDays(days)
	sched := domain.Schedule{Days: days, Start: args[2], End: args[3]}
	if err := a.store.UpdateSchedule(ctx, g.ID, sched); err != nil {
		return err
	}
	fmt.Printf("updated schedule for %q\n", g.Name)
	return nil
}

func (a *app) save(ctx context.Context, args []string) error {
	if len(args) < 6 {
		return fmt.Errorf("usage: blocky save <group> <name> <on|off> <days> <start> <end> [domain...]")
	}
	g, err := a.resolve(ctx, args[:1], "save <group> ...")
	if err != nil {
		return err
	}

	var enabled bool
	switch args[2] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("enabled must be on or off, got %q", args[2])
	}

	sched := schedule.ClearSchedule()
	if args[3] != "-" {
		days := []string{}
		for _, d := range strings.Split(args[3], ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				days = append(days, d)
			}
		}
		schedule.SortDays(days)
		sched = domain.Schedule{Days: days, Start: args[4], End: args[5]}
	}

	domainsText := strings.Join(args[6:], "\n")
	if err := a.store.Save(ctx, g.ID, args[1], enabled, domainsText, sched); err != nil {
		return err
	}
	fmt.Printf("saved group %q\n", args[1])
	return nil
}

func (a *app) setEnabled(ctx context.Context, args []string, enabled bool) error {
	verb := "disable"
	if enabled {
		verb = "enable"
	}
	g, err := a.resolve(ctx, args, verb+" <group>")
	if err != nil {
		return err
	}
	if err := a.store.Update(ctx, g.ID, g.Name, enabled); err != nil {
		return err
	}
	fmt.Printf("%sd group %q\n", verb, g.Name)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	g, err := a.resolve(ctx, args, "rm <group>")
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, g.ID); err != nil {
		return err
	}
	fmt.Printf("deleted group %q\n", g.Name)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	if err := a.store.FetchAll(ctx); err != nil {
		return err
	}
	data, err := a.store.Export()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d group(s) to %s\n", len(a.store.Groups()), args[0])
	return nil
}

func (a *app) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: blocky import <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := a.store.FetchAll(ctx); err != nil {
		return err
	}
	result, err := a.store.Import(ctx, data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d group(s), skipped %d\n", result.Created, result.Skipped)
	return nil
}

func (a *app) blocklist(ctx context.Context) error {
	state, err := a.client.Blocklist(ctx)
	if err != nil {
		return err
	}
	if len(state.Domains) == 0 {
		fmt.Println("blocklist is empty")
		return nil
	}
	for _, d := range state.Domains {
		fmt.Println(d)
	}
	return nil
}

// resolve fetches the group list and matches the first argument against
// group names, then ID prefixes.
func (a *app) resolve(ctx context.Context, args []string, usageHint string) (*domain.Group, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: blocky %s", usageHint)
	}
	if err := a.store.FetchAll(ctx); err != nil {
		return nil, err
	}
	ref := args[0]
	groups := a.store.Groups()
	for i := range groups {
		if groups[i].Name == ref {
			return &groups[i], nil
		}
	}
	var match *domain.Group
	for i := range groups {
		if strings.HasPrefix(groups[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous group %q", ref)
			}
			match = &groups[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no group matching %q", ref)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func activeLabel(g domain.Group, now time.Time) string {
	if schedule.IsActiveNow(g, now) {
		return "blocking"
	}
	return "idle"
}
