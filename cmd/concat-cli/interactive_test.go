package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubDriver struct {
	inputs   []string
	confirms []bool
	infos    []string
	messages []string
	inputErr error
}

func (s *stubDriver) Input(_ context.Context, cfg inputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if len(s.inputs) == 0 {
		return cfg.Default, nil
	}
	next := s.inputs[0]
	s.inputs = s.inputs[1:]
	return next, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg confirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if len(s.confirms) == 0 {
		return cfg.Default, nil
	}
	next := s.confirms[0]
	s.confirms = s.confirms[1:]
	return next, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func TestRunInteractive(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []string
		confirms []bool
		want     string
	}{
		{
			name:   "defaults",
			inputs: []string{"a", "b", "a", "", ","},
			want:   "a,b,a",
		},
		{
			name:     "distinct and quoted",
			inputs:   []string{"a", "b", "a", "", " | "},
			confirms: []bool{true, true, false},
			want:     `"a" | "b"`,
		},
		{
			name:     "single quotes",
			inputs:   []string{"x", "", "-"},
			confirms: []bool{false, true, true},
			want:     "'x'",
		},
		{
			name:   "no values",
			inputs: []string{"", ","},
			want:   "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			driver := &stubDriver{inputs: tc.inputs, confirms: tc.confirms}
			got, err := runInteractive(context.Background(), driver)
			if err != nil {
				t.Fatalf("run interactive: %v", err)
			}
			if got != tc.want {
				t.Fatalf("result mismatch\nwant: %q\n got: %q", tc.want, got)
			}
			if diff := cmp.Diff([]string{tc.want}, driver.infos); diff != "" {
				t.Fatalf("info mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunInteractive_SkipsSingleQuoteWithoutQuotes(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a", "", ","}, confirms: []bool{false, false}}
	if _, err := runInteractive(context.Background(), driver); err != nil {
		t.Fatalf("run interactive: %v", err)
	}
	want := []string{"Value 1", "Value 2", "Separator", "Drop duplicates?", "Quote values?"}
	if diff := cmp.Diff(want, driver.messages); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRunInteractive_Aborted(t *testing.T) {
	driver := &stubDriver{inputErr: errAborted}
	if _, err := runInteractive(context.Background(), driver); !errors.Is(err, errAborted) {
		t.Fatalf("expected errAborted, got %v", err)
	}
	if len(driver.infos) != 0 {
		t.Fatalf("expected no output, got %v", driver.infos)
	}
}
