package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jsvensson/themelab"
	"github.com/jsvensson/themelab/internal/bridge"
	"github.com/jsvensson/themelab/internal/config"
	"github.com/jsvensson/themelab/internal/format"
	"github.com/jsvensson/themelab/internal/history"
	"github.com/jsvensson/themelab/internal/host"
	"github.com/jsvensson/themelab/internal/importer"
	"github.com/jsvensson/themelab/internal/lab"
	"github.com/jsvensson/themelab/internal/lsp"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/session"
	"github.com/jsvensson/themelab/internal/tui"
	"github.com/jsvensson/themelab/internal/watch"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var (
	flagConfig    string
	flagVerbose   int
	flagLog       string
	flagWatch     string
	flagImport    string
	flagName      string
	flagType      string
	flagTheme     string
	flagOut       string
	flagTemplates string
	flagApp       []string
	flagCheck     bool
	version       = "dev" // Injected at build time via ldflags
)

var log = commonlog.GetLogger("themelab")

var rootCmd = &cobra.Command{
	Use:               "themelab",
	Short:             "Design and preview editor color themes",
	Version:           version,
	RunE:              runTUI,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive theme editor",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editor core over JSON-RPC on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server for HCL theme documents on stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Print the normalized model of a theme file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export SRC DST",
	Short: "Convert a theme file",
	Long:  "Convert a theme file. The format of DST is taken from its extension: .json, .css, .vsix or .hcl.",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate theme files from templates",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format HCL theme documents",
	Long:  "Format one or more HCL theme documents in-place. Prints the name of each file that was modified.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentPreRun = configureLogging

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config HCL file")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "", "write logs to this file instead of stderr")

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&flagWatch, "watch", "", "re-import this theme file whenever it changes")
		c.Flags().StringVar(&flagImport, "import", "", "theme file offered by the import command")
	}
	exportCmd.Flags().StringVar(&flagName, "name", "", "theme name, overriding the source metadata")
	exportCmd.Flags().StringVar(&flagType, "type", "", "theme type (dark, light or hc), overriding the source metadata")
	generateCmd.Flags().StringVar(&flagTheme, "theme", "theme.hcl", "path to theme file")
	generateCmd.Flags().StringVar(&flagOut, "out", "output", "output directory")
	generateCmd.Flags().StringVar(&flagTemplates, "templates", "templates", "templates directory")
	generateCmd.Flags().StringArrayVar(&flagApp, "app", nil, "generate only for specific apps (can be repeated)")
	fmtCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "check if files are formatted (do not write changes)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

// configureLogging sends logs to --log, or to stderr. The editor owns the
// terminal, so it stays silent unless a log file is given.
func configureLogging(cmd *cobra.Command, _ []string) {
	verbosity := flagVerbose
	interactive := cmd == rootCmd || cmd == tuiCmd
	if flagLog == "" && interactive {
		verbosity = -4
	}
	if flagLog != "" {
		commonlog.Configure(verbosity, &flagLog)
		return
	}
	commonlog.Configure(verbosity, nil)
}

// openStore returns the session store of the configuration.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Path == "" {
		return session.NewMemoryStore(), nil
	}
	return session.OpenSQLite(ctx, cfg.Session.Path, cfg.Session.Workspace)
}

func newController(ctx context.Context, cfg *config.Config, peer lab.Peer, store session.Store) *lab.Controller {
	return lab.New(ctx, peer, lab.Options{
		Store:    store,
		Debounce: cfg.Preview.Debounce,
		History: []history.Option{
			history.WithDepth(cfg.History.Depth),
			history.WithInterval(cfg.History.Coalesce),
		},
	})
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	notices := make(chan string, 8)
	notify := func(text string) {
		select {
		case notices <- text:
		default:
			log.Debugf("dropping notice: %s", text)
		}
	}

	var ctl *lab.Controller
	toCore := bridge.NewPipe(bridge.ReceiverFunc(func(msg protocol.Message) { ctl.Handle(msg) }))
	h := host.New(ctx, cfg, toCore, host.Options{
		Picker: host.PickerFunc(pickTheme),
		Notify: notify,
	})
	toHost := bridge.NewPipe(h)
	ctl = newController(ctx, cfg, toHost, store)
	ctl.Start()

	if flagWatch != "" {
		w, err := watch.New(flagWatch, 0)
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		defer w.Stop()
		go func() {
			for range changes {
				if err := h.Import(flagWatch); err != nil {
					log.Warningf("re-importing %s: %s", flagWatch, err)
					notify(err.Error())
				}
			}
		}()
	}

	_, err = tea.NewProgram(tui.New(ctl, notices), tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	ctl.Close()
	toHost.Close()
	toCore.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// pickTheme offers the file given by --import, or the watched file.
func pickTheme(context.Context) (string, error) {
	switch {
	case flagImport != "":
		return flagImport, nil
	case flagWatch != "":
		return flagWatch, nil
	default:
		return "", errors.New("no theme file to import: start with --import FILE")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// The connection reads as soon as it exists; hold messages until the
	// controller is built.
	var ctl *lab.Controller
	ready := make(chan struct{})
	conn := bridge.Stdio(bridge.NewServer(bridge.ReceiverFunc(func(msg protocol.Message) {
		<-ready
		ctl.Handle(msg)
	}), bridge.CoreMethods), flagVerbose > 1)
	peer := bridge.NewPeer(ctx, conn)
	ctl = newController(ctx, cfg, peer, store)
	close(ready)
	ctl.Start()
	log.Info("serving editor core on stdio")

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
	}
	ctl.Close()
	peer.Close()
	if err := conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
		return err
	}
	return nil
}

func runLSP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	return lsp.NewServer(version, cfg.Categories, flagVerbose > 1).Run()
}

func runImport(cmd *cobra.Command, args []string) error {
	m, err := importer.File(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	doc, err := themelab.Load(args[0])
	if err != nil {
		return err
	}
	if flagName != "" {
		doc.Meta.Name = flagName
	}
	if flagType != "" {
		doc.Meta.Type = flagType
	}
	if err := themelab.Save(args[1], doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", args[1])
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	doc, err := themelab.Load(flagTheme)
	if err != nil {
		return err
	}

	e := &themelab.Engine{
		TemplatesDir: flagTemplates,
		OutputDir:    flagOut,
		Apps:         flagApp,
	}

	if err := e.Run(doc); err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated theme files in %s\n", flagOut)
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	hasErrors := false
	needsFormatting := false

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		content := string(data)
		formatted, err := format.Format(content)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		if formatted == content {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		needsFormatting = true

		if !flagCheck {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", path, err)
				hasErrors = true
			}
		}
	}

	if hasErrors || (flagCheck && needsFormatting) {
		os.Exit(1)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
