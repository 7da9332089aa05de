// Command kvnav is a terminal navigator and editor for a Redis-compatible
// key-value datastore: it presents the flat, delimited key namespace as a
// browsable tree and lets values be viewed, formatted, and edited in place.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/kvnav/kvnav/internal/app"
	"github.com/kvnav/kvnav/internal/bus"
	"github.com/kvnav/kvnav/internal/config"
	"github.com/kvnav/kvnav/internal/debug"
	"github.com/kvnav/kvnav/internal/editor"
	"github.com/kvnav/kvnav/internal/kverr"
	"github.com/kvnav/kvnav/internal/store/redisadapter"
	"github.com/kvnav/kvnav/internal/ui"
	"github.com/kvnav/kvnav/internal/worker"
)

func main() {
	defer log.Flush()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Flags
	var configPath string
	var delimChars []string

	cmd := &cobra.Command{
		Use:   "kvnav [connection]",
		Short: "kvnav is a terminal navigator and editor for a Redis-compatible datastore",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Positional = args[0]
			}
			flags.Delimiters = delimChars
			return run(configPath, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Host, "host", "H", "", "datastore host")
	pf.IntVarP(&flags.Port, "port", "p", 0, "datastore port")
	pf.StringVarP(&flags.Password, "password", "a", "", "datastore password")
	pf.IntVarP(&flags.DB, "db", "n", 0, "datastore logical database index")
	pf.StringArrayVarP(&delimChars, "delimiter", "d", nil, "key namespace delimiter (repeatable)")
	pf.StringVar(&flags.Profile, "profile", "", "named profile from the config file")
	pf.BoolVar(&flags.Readonly, "readonly", false, "deny all writes and deletes for this session")
	pf.StringVar(&configPath, "config", config.DefaultPath(), "path to the config file")

	return cmd
}

// run resolves configuration, wires the adapter/bus/worker/model, and runs
// the Bubble Tea program until the user quits (spec §5, §6).
func run(configPath string, flags config.Flags) error {
	file, err := config.Load(configPath)
	if err != nil {
		return kverr.New(err)
	}

	conn, err := config.Resolve(file, flags)
	if err != nil {
		return err
	}
	debug.Dump("resolved connection", conn)

	var adapter *redisadapter.Adapter
	if conn.URL != "" {
		adapter, err = redisadapter.NewFromURL(conn.URL)
	} else {
		adapter = redisadapter.New(redisadapter.Options{
			Addr:     fmt.Sprintf("%s:%d", conn.Host, conn.Port),
			Password: conn.Password,
			DB:       conn.DB,
		})
	}
	if err != nil {
		return fmt.Errorf("kvnav: connect: %w", err)
	}

	ed, err := editor.New()
	if err != nil {
		return fmt.Errorf("kvnav: start editor bridge: %w", err)
	}
	defer ed.Close()

	b := bus.New(bus.DefaultCapacity)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx, adapter, b)

	theme := ui.Dark
	model := app.New(conn.Delimiters, conn.Readonly, conn.ProtectedNamespaces, theme.FormatTheme(), b, ed)

	p := tea.NewProgram(program{model}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("kvnav: run: %w", err)
	}
	return nil
}

// program adapts *app.Model to tea.Model. internal/ui renders a *app.Model
// as a pure function of its exported state (component H is stateless), so
// View is a thin delegation rather than a method on Model itself — that
// keeps internal/app free of any dependency on internal/ui.
type program struct{ *app.Model }

func (p program) View() string { return ui.View(p.Model) }

func (p program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := p.Model.Update(msg)
	return p, cmd
}
