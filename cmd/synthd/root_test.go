package main

import "testing"

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestResolveConfigFlagPrecedence(t *testing.T) {
	opts := &cliOptions{addr: ":9999", device: "cpu", corsOrigins: "http://a, http://b"}
	cfg, err := resolveConfig(opts)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.PreferredDevice != "cpu" {
		t.Fatalf("device=%q", cfg.PreferredDevice)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b" {
		t.Fatalf("origins=%v", cfg.CORSAllowedOrigins)
	}
	// untouched fields keep their defaults
	if cfg.GenerateTimeoutSec != 600 {
		t.Fatalf("generate timeout=%d", cfg.GenerateTimeoutSec)
	}
}

func TestResolveConfigRejectsInvalid(t *testing.T) {
	opts := &cliOptions{device: "quantum"}
	if _, err := resolveConfig(opts); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildRootCmdHasSubcommands(t *testing.T) {
	root := buildRootCmd()
	want := map[string]bool{"serve": false, "hw": false, "capabilities": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("missing subcommand %s", name)
		}
	}
}
