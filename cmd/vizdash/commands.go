package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/vizdash/internal/config"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/dispatch"
	"github.com/san-kum/vizdash/internal/export"
	"github.com/san-kum/vizdash/internal/logging"
	"github.com/san-kum/vizdash/internal/metrics"
	"github.com/san-kum/vizdash/internal/render"
	"github.com/san-kum/vizdash/internal/scenario"
	"github.com/san-kum/vizdash/internal/server"
	"github.com/san-kum/vizdash/internal/tui"
)

const defaultDashboard = "iris"

// loadConfig reads --config when given and applies the persistent flags
// on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.Stderr(cfg.Log.Level, cfg.Log.Format)
}

func openContext(ctx context.Context, cfg *config.Config, name string) (*dashboard.Context, error) {
	if !cfg.Enabled(name) {
		return nil, fmt.Errorf("dashboard %s is disabled in the config", name)
	}
	def, err := dashboard.NewRegistry().Get(name)
	if err != nil {
		return nil, err
	}
	return dashboard.Load(ctx, def, cfg.Source(def.Dataset))
}

// initialEvent turns --preset, --set and --select into the first event of a
// one-shot session. It returns nil when the defaults should be used.
func initialEvent(cfg *config.Config, dctx *dashboard.Context) (dispatch.Event, error) {
	state := controls.NewState(nil)
	name := ""
	if preset != "" {
		st, ok := cfg.Preset(dctx.Name(), preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q for %s", preset, dctx.Name())
		}
		state, name = st, preset
	}
	for _, kv := range sets {
		id, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want id=value", kv)
		}
		decl, found := dctx.Control(id)
		if !found {
			return nil, fmt.Errorf("--set: unknown control %q", id)
		}
		state = state.With(id, decl.Parse(raw))
		name = ""
	}
	if state.Len() == 0 {
		return nil, nil
	}
	return dispatch.Applied{Name: name, State: state}, nil
}

// runOnce starts a session, handles the initial event and the optional
// selection, and renders only the last update.
func runOnce(cfg *config.Config, dctx *dashboard.Context, log zerolog.Logger, renderers ...dispatch.Renderer) (dispatch.Update, error) {
	ev, err := initialEvent(cfg, dctx)
	if err != nil {
		return dispatch.Update{}, err
	}
	sess, err := dispatch.NewSession(dctx, dispatch.WithLogger(log))
	if err != nil {
		return dispatch.Update{}, err
	}

	var events []dispatch.Event
	if ev != nil {
		events = append(events, ev)
	}
	if selection != "" {
		def := dctx.Definition()
		if def.Selection == nil {
			return dispatch.Update{}, fmt.Errorf("%s has no clickable output", dctx.Name())
		}
		events = append(events, dispatch.Clicked{Output: def.Selection.Output, Location: selection})
	}

	var u dispatch.Update
	if len(events) == 0 {
		if u, err = sess.Start(); err != nil {
			return u, err
		}
	}
	for _, e := range events {
		if u, err = sess.Handle(e); err != nil {
			return u, fmt.Errorf("%s: %w", e, err)
		}
	}
	for _, r := range renderers {
		if err := r.Render(u); err != nil {
			return u, err
		}
	}
	return u, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name := defaultDashboard
	if len(args) > 0 {
		name = args[0]
	}

	dctx, err := openContext(cmd.Context(), cfg, name)
	if err != nil {
		return err
	}

	var opts []dispatch.Option
	if preset != "" {
		st, ok := cfg.Preset(name, preset)
		if !ok {
			return fmt.Errorf("unknown preset %q for %s", preset, name)
		}
		opts = append(opts, dispatch.WithState(dctx.Defaults().Merge(st)))
	}
	// Logs would tear the alternate screen.
	opts = append(opts, dispatch.WithLogger(zerolog.Nop()))
	sess, err := dispatch.NewSession(dctx, opts...)
	if err != nil {
		return err
	}

	return tui.Run(sess, tui.Options{
		Theme:   render.GetTheme(cfg.Theme),
		Presets: cfg.PresetNames(name),
		Preset: func(p string) (controls.State, bool) {
			return cfg.Preset(name, p)
		},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var contexts []*dashboard.Context
	for _, name := range dashboard.NewRegistry().List() {
		if !cfg.Enabled(name) {
			continue
		}
		dctx, err := openContext(ctx, cfg, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Info().Str("dashboard", name).Int("rows", dctx.Data().Len()).Msg("loaded")
		contexts = append(contexts, dctx)
	}
	if len(contexts) == 0 {
		return errors.New("no dashboards enabled")
	}

	srv := server.New(contexts,
		server.WithLogger(log),
		server.WithMetrics(metrics.NewRecorder()),
		server.WithPresets(cfg),
	)
	log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	dctx, err := openContext(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}

	var r dispatch.Renderer
	switch {
	case asJSON:
		r = render.JSONWriter{W: os.Stdout}
	case outDir == "":
		r = render.Writer{W: os.Stdout, Term: render.NewTerminal(render.GetTheme(cfg.Theme), width, height)}
	}

	var renderers []dispatch.Renderer
	if r != nil {
		renderers = append(renderers, r)
	}
	u, err := runOnce(cfg, dctx, log, renderers...)
	if err != nil {
		return err
	}
	if outDir == "" {
		return nil
	}
	return writeImages(u, outDir, format)
}

func writeImages(u dispatch.Update, dir, fmtName string) error {
	f, err := render.ParseFormat(fmtName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	img := render.NewImage(f)
	for _, o := range u.Outputs {
		if !o.OK() {
			fmt.Fprintf(os.Stderr, "skip %s: %s: %s\n", o.ID, o.Code, o.Message)
			continue
		}
		path := filepath.Join(dir, o.ID+"."+string(f))
		if err := writeImage(img, path, o); err != nil {
			if errors.Is(err, render.ErrEmptyChart) {
				fmt.Fprintf(os.Stderr, "skip %s: no data\n", o.ID)
				continue
			}
			return fmt.Errorf("%s: %w", o.ID, err)
		}
		fmt.Println(path)
	}
	return nil
}

func writeImage(img render.Image, path string, o dashboard.Output) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := img.Render(file, *o.Spec); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if exports {
		runs, err := export.New(cfg.ExportDir).List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no exports found")
			return nil
		}
		fmt.Fprintln(w, "ID\tDASHBOARD\tTRIGGER\tFILES\tFAILED\tTIMESTAMP")
		for _, m := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				m.ID, m.Dashboard, m.Trigger, len(m.Files), len(m.Failed), m.Timestamp.Format(time.DateTime))
		}
		return nil
	}

	reg := dashboard.NewRegistry()
	fmt.Fprintln(w, "NAME\tTITLE\tDATASET\tOUTPUTS\tENABLED")
	for _, name := range reg.List() {
		def, err := reg.Get(name)
		if err != nil {
			return err
		}
		ids := make([]string, len(def.Outputs))
		for i, o := range def.Outputs {
			ids[i] = o.ID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", name, def.Title, def.Dataset, strings.Join(ids, ","), cfg.Enabled(name))
	}
	return nil
}

func runControls(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dctx, err := openContext(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}
	def := dctx.Definition()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROL\tLABEL\tKIND\tDEFAULT\tOPTIONS")
	for _, d := range dctx.Controls() {
		opts := d.Values()
		if len(opts) > 8 {
			opts = append(opts[:4:4], "…", opts[len(opts)-1])
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Label, d.Kind, d.Default.Format(), strings.Join(opts, ","))
	}
	w.Flush()

	if len(def.Filters) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILTER\tCOLUMN\tMATCH\tEMPTY")
		for _, f := range def.Filters {
			policy := "-"
			if f.Match == dashboard.MatchMembership {
				policy = f.Policy.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Control, f.Column, f.Match, policy)
		}
		w.Flush()
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tKIND\tTITLE")
	for _, o := range def.Outputs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.Kind, o.Title)
	}
	w.Flush()

	if def.Selection != nil {
		fmt.Printf("\nclicks on %s select %s; nothing selected shows %s\n",
			def.Selection.Output, def.Selection.Column, def.Selection.Fallback)
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names := dashboard.NewRegistry().List()
	if len(args) > 0 {
		names = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "DASHBOARD\tPRESET\tVALUES")
	for _, dash := range names {
		for _, p := range cfg.PresetNames(dash) {
			st, _ := cfg.Preset(dash, p)
			fmt.Fprintf(w, "%s\t%s\t%s\n", dash, p, st)
		}
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	dir := cfg.ExportDir
	if outDir != "" {
		dir = outDir
	}
	var formats []render.Format
	for _, name := range strings.Split(format, ",") {
		f, err := render.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}
	store := export.New(dir, formats...)
	if err := store.Init(); err != nil {
		return err
	}

	dctx, err := openContext(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}
	u, err := runOnce(cfg, dctx, log)
	if err != nil {
		return err
	}
	m, err := store.Save(u)
	if err != nil {
		return err
	}
	fmt.Printf("exported %s (%d files, %d failed) to %s\n", m.ID, len(m.Files), len(m.Failed), store.Dir(m.ID))
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	sc, err := scenario.LoadScenario(args[0])
	if err != nil {
		return err
	}
	dctx, err := openContext(cmd.Context(), cfg, sc.Dashboard)
	if err != nil {
		return err
	}

	opts := []dispatch.Option{dispatch.WithLogger(log)}
	if exportTo != "" {
		store := export.New(exportTo)
		if err := store.Init(); err != nil {
			return err
		}
		opts = append(opts, dispatch.WithRenderer(store))
	}
	if live {
		lv := tui.NewLive(os.Stdout, render.NewTerminal(render.GetTheme(cfg.Theme), 80, 14),
			time.Duration(delay*float64(time.Second)))
		defer lv.Close()
		opts = append(opts, dispatch.WithRenderer(lv))
	}
	sess, err := dispatch.NewSession(dctx, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if sc.Name != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	results, err := scenario.Run(ctx, sc, sess, cfg.Preset)
	for _, r := range results {
		fmt.Println(r.Summary())
	}
	return err
}
