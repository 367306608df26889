package main

import (
	"reflect"
	"testing"

	"getmytext-cli/internal/cli"
)

func TestRewriteDirectEditArgs(t *testing.T) {
	t.Parallel()

	subcommands := map[string]bool{
		"edit": true, "watch": true, "share": true, "burn": true,
		"serve": true, "config": true, "help": true, "completion": true,
	}

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"getmytext"},
			want: []string{"getmytext"},
		},
		{
			name: "direct id first token",
			in:   []string{"getmytext", "dqjl"},
			want: []string{"getmytext", "edit", "dqjl"},
		},
		{
			name: "direct id after value flag",
			in:   []string{"getmytext", "--server", "http://127.0.0.1:19998", "dqjl"},
			want: []string{"getmytext", "--server", "http://127.0.0.1:19998", "edit", "dqjl"},
		},
		{
			name: "direct id after equals flag",
			in:   []string{"getmytext", "--config=./cfg.yaml", "dqjl"},
			want: []string{"getmytext", "--config=./cfg.yaml", "edit", "dqjl"},
		},
		{
			name: "direct id after bool flag",
			in:   []string{"getmytext", "--pretty", "dqjl"},
			want: []string{"getmytext", "--pretty", "edit", "dqjl"},
		},
		{
			name: "direct id after double dash",
			in:   []string{"getmytext", "--log-level", "debug", "--", "dqjl"},
			want: []string{"getmytext", "--log-level", "debug", "edit", "--", "dqjl"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"getmytext", "share", "dqjl"},
			want: []string{"getmytext", "share", "dqjl"},
		},
		{
			name: "invalid id not rewritten",
			in:   []string{"getmytext", "no/such"},
			want: []string{"getmytext", "no/such"},
		},
		{
			name: "too short not rewritten",
			in:   []string{"getmytext", "ab"},
			want: []string{"getmytext", "ab"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectEditArgs(tt.in, subcommands)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectEditArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

func TestRewriteDirectEditArgs_ResolvesToEdit(t *testing.T) {
	subcommands := map[string]bool{"help": true, "completion": true}
	for _, c := range cli.NewRootCmd().Commands() {
		subcommands[c.Name()] = true
	}

	for _, in := range [][]string{
		{"getmytext", "dqjl"},
		{"getmytext", "--server", "http://127.0.0.1:19998", "dqjl"},
		{"getmytext", "--server", "http://127.0.0.1:19998", "--", "dqjl"},
	} {
		root := cli.NewRootCmd()
		args := rewriteDirectEditArgs(in, subcommands)[1:]
		found, rest, err := root.Find(args)
		if err != nil {
			t.Fatalf("%v: Find: %v", in, err)
		}
		if found.Name() != "edit" {
			t.Fatalf("%v: expected edit command; got %q", in, found.Name())
		}
		if err := found.ParseFlags(rest); err != nil {
			t.Fatalf("%v: ParseFlags: %v", in, err)
		}
		if pos := found.Flags().Args(); len(pos) != 1 || pos[0] != "dqjl" {
			t.Fatalf("%v: expected edit to receive [dqjl]; got %v", in, pos)
		}
		if err := found.ValidateArgs(found.Flags().Args()); err != nil {
			t.Fatalf("%v: expected args accepted by edit; got %v", in, err)
		}
	}
}
