package main

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want config
	}{
		{
			name: "defaults",
			args: []string{"-template", "{% concat a b %}"},
			want: config{template: "{% concat a b %}", extension: ".tpl", logLevel: "info"},
		},
		{
			name: "environment",
			args: []string{"-template", "labels"},
			env: map[string]string{
				envTemplateDir: "templates",
				envExtension:   ".html",
				envLogLevel:    " debug ",
			},
			want: config{template: "labels", templateDir: "templates", extension: ".html", logLevel: "debug"},
		},
		{
			name: "flags override environment",
			args: []string{"-template-file", "in.tpl", "-template-dir", "tpl", "-log-level", "warn", "-data", "data.json", "-output", "out.txt"},
			env:  map[string]string{envTemplateDir: "templates", envLogLevel: "debug"},
			want: config{templateFile: "in.tpl", templateDir: "tpl", extension: ".tpl", dataPath: "data.json", output: "out.txt", logLevel: "warn"},
		},
		{
			name: "repeated globals",
			args: []string{"-template", "{% concat env region %}", "-global", "env=prod", "-global", " region =eu=west", "-global", "env=stage"},
			want: config{
				template:  "{% concat env region %}",
				extension: ".tpl",
				logLevel:  "info",
				globals:   globalVars{"env": "stage", "region": "eu=west"},
			},
		},
		{
			name: "interactive needs no template",
			args: []string{"-interactive"},
			env:  map[string]string{envExtension: "  "},
			want: config{interactive: true, extension: ".tpl", logLevel: "info"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseConfig(tc.args, envLookup(tc.env), io.Discard)
			if err != nil {
				t.Fatalf("parse config: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(config{})); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConfig_Errors(t *testing.T) {
	for name, args := range map[string][]string{
		"missing template": {},
		"both templates":   {"-template", "a", "-template-file", "b"},
		"unknown flag":     {"-nope"},
		"global no value":  {"-template", "a", "-global", "env"},
		"global no key":    {"-template", "a", "-global", "=x"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := parseConfig(args, nil, io.Discard); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := parseConfig([]string{"-h"}, nil, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}
