package main

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/vizdash/internal/config"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dispatch"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		preset, sets, selection = "", nil, ""
	})
	preset, sets, selection = "", nil, ""
}

func TestInitialEvent(t *testing.T) {
	resetFlags(t)
	cfg := config.DefaultConfig()
	dctx, err := openContext(context.Background(), cfg, "iris")
	if err != nil {
		t.Fatal(err)
	}

	ev, err := initialEvent(cfg, dctx)
	if err != nil || ev != nil {
		t.Fatalf("no flags: expected no event, got %v, %v", ev, err)
	}

	sets = []string{"species=setosa, versicolor", "x-col=petal_length"}
	ev, err = initialEvent(cfg, dctx)
	if err != nil {
		t.Fatal(err)
	}
	applied, ok := ev.(dispatch.Applied)
	if !ok {
		t.Fatalf("expected Applied, got %T", ev)
	}
	species, _ := applied.State.Get("species")
	if !species.Equal(controls.List("setosa", "versicolor")) {
		t.Errorf("species = %s", species.Format())
	}

	tests := []struct {
		name string
		sets []string
		want string
	}{
		{"no equals sign", []string{"species"}, "want id=value"},
		{"unknown control", []string{"colour=red"}, "unknown control"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets = tt.sets
			_, err := initialEvent(cfg, dctx)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestInitialEvent_UnknownPreset(t *testing.T) {
	resetFlags(t)
	cfg := config.DefaultConfig()
	dctx, err := openContext(context.Background(), cfg, "iris")
	if err != nil {
		t.Fatal(err)
	}
	preset = "nope"
	if _, err := initialEvent(cfg, dctx); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestRunOnce_PresetAndSelection(t *testing.T) {
	resetFlags(t)
	cfg := config.DefaultConfig()
	dctx, err := openContext(context.Background(), cfg, "gapminder")
	if err != nil {
		t.Fatal(err)
	}
	preset, selection = "asia-1952", "JPN"

	var rendered []dispatch.Update
	r := dispatch.RendererFunc(func(u dispatch.Update) error {
		rendered = append(rendered, u)
		return nil
	})
	u, err := runOnce(cfg, dctx, zerolog.Nop(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(rendered) != 1 {
		t.Fatalf("expected only the last update rendered, got %d", len(rendered))
	}
	if u.Selection != "JPN" {
		t.Errorf("selection = %q", u.Selection)
	}
	year, _ := u.State.Get("year")
	if year.String() != "1952" {
		t.Errorf("year = %s", year.Format())
	}
	if failed := u.Failed(); len(failed) != 0 {
		t.Errorf("unexpected failures: %v", failed)
	}
}

func TestOpenContext_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dashboards = []string{"iris"}
	if _, err := openContext(context.Background(), cfg, "gapminder"); err == nil {
		t.Error("expected disabled dashboard to be refused")
	}
	if _, err := openContext(context.Background(), cfg, "nope"); err == nil {
		t.Error("expected unknown dashboard error")
	}
}
