package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAppRun(t *testing.T) {
	dir := t.TempDir()
	yamlData := writeFile(t, dir, "data.yaml", "zero: Zero\nobj:\n  key2: {label: C}\n  key0: {label: A}\n  key1: {label: B}\n")
	jsonData := writeFile(t, dir, "data.json", `{"tags": ["b", "a", "b"]}`)
	tplFile := writeFile(t, dir, "labels.tpl", `{% concatblock obj separator=" > " %}{{ label }}{% endconcatblock %}`)
	writeFile(t, dir, "named.html", `{% concat tags distinct=true %}`)

	tests := []struct {
		name string
		cfg  config
		want string
	}{
		{
			name: "inline template with yaml data",
			cfg:  config{template: `{% concat zero obj separator=" " %}`, dataPath: yamlData, extension: ".tpl"},
			want: "Zero key2 key0 key1\n",
		},
		{
			name: "template file",
			cfg:  config{templateFile: tplFile, dataPath: yamlData, extension: ".tpl"},
			want: "C > A > B\n",
		},
		{
			name: "named template from directory",
			cfg:  config{template: "named", templateDir: dir, extension: ".html", dataPath: jsonData},
			want: "b,a\n",
		},
		{
			name: "globals next to data",
			cfg: config{
				template:  `{% concat env zero %}`,
				dataPath:  yamlData,
				extension: ".tpl",
				globals:   globalVars{"env": "prod", "zero": "shadowed"},
			},
			want: "prod,Zero\n",
		},
		{
			name: "no data",
			cfg:  config{template: `{% concat "x" "y" quotes=true %}`, extension: ".tpl"},
			want: "\"x\",\"y\"\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout bytes.Buffer
			a := &app{cfg: tc.cfg, logger: zerolog.Nop(), stdout: &stdout}
			if err := a.run(context.Background()); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := stdout.String(); got != tc.want {
				t.Fatalf("output mismatch\nwant: %q\n got: %q", tc.want, got)
			}
		})
	}
}

func TestAppRun_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	var stdout bytes.Buffer
	a := &app{
		cfg:    config{template: `{% concat "a" "b" separator="-" %}`, output: out, extension: ".tpl"},
		logger: zerolog.Nop(),
		stdout: &stdout,
	}
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "a-b" {
		t.Fatalf("unexpected output file %q", got)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
}

func TestAppRun_Errors(t *testing.T) {
	dir := t.TempDir()
	badData := writeFile(t, dir, "bad.json", `{"a": `)

	for name, cfg := range map[string]config{
		"missing data file":     {template: `{% concat a %}`, dataPath: filepath.Join(dir, "nope.yaml")},
		"invalid data":          {template: `{% concat a %}`, dataPath: badData},
		"missing template file": {templateFile: filepath.Join(dir, "nope.tpl")},
		"template parse error":  {template: `{% concatblock a %}`},
	} {
		t.Run(name, func(t *testing.T) {
			a := &app{cfg: cfg, logger: zerolog.Nop(), stdout: &bytes.Buffer{}}
			if err := a.run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAppRun_Interactive(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a", "b", "", "+"}}
	a := &app{cfg: config{interactive: true}, logger: zerolog.Nop(), stdout: &bytes.Buffer{}, driver: driver}
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infos) != 1 || driver.infos[0] != "a+b" {
		t.Fatalf("unexpected interactive output %v", driver.infos)
	}
}
