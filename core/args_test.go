package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type testResourceOptions struct {
	Cores  int    `short:"c" long:"cores"`
	Memory string `short:"m" long:"memory"`
	Dry    bool   `short:"j" long:"dry"`
}

type testCommand struct {
	Help    bool                `short:"h" long:"help"`
	Replica []string            `short:"r" long:"replica" arity:"*"`
	Equi    []string            `long:"equi" arity:"*"`
	Count   int                 `short:"n"`
	Prod    string              `long:"prod"`
	Options testResourceOptions `group:"Resource Options"`
	Args    struct {
		Inputs []string
	} `positional-args:"true"`
}

type testScriptCommand struct {
	Help bool   `short:"h" long:"help"`
	Name string `long:"name"`
	Args struct {
		Script []string
	} `positional-args:"true" passthrough:"true"`
}

var testCommands = map[string]interface{}{
	"replica": &testCommand{},
	"gmx":     &testCommand{},
	"script":  &testScriptCommand{},
}

func TestFlagTable(t *testing.T) {
	want := []FlagSpec{
		{Short: "h", Long: "help", Arity: 0, Field: "Help"},
		{Short: "r", Long: "replica", Arity: Variadic, Field: "Replica"},
		{Long: "equi", Arity: Variadic, Field: "Equi"},
		{Short: "n", Arity: 1, Field: "Count"},
		{Long: "prod", Arity: 1, Field: "Prod"},
		{Short: "c", Long: "cores", Arity: 1, Field: "Cores"},
		{Short: "m", Long: "memory", Arity: 1, Field: "Memory"},
		{Short: "j", Long: "dry", Arity: 0, Field: "Dry"},
	}
	if diff := cmp.Diff(want, FlagTable(&testCommand{})); diff != "" {
		t.Errorf("flag table mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{
			name: "files after options",
			argv: []string{"joblaunch", "gmx", "-c", "4", "--dry", "a.tpr", "b.tpr"},
			want: []string{"gmx", "-c", "4", "--dry", "--", "a.tpr", "b.tpr"},
		},
		{
			name: "variadic runs",
			argv: []string{"joblaunch", "replica", "--equi", "nvt.mdp", "npt.mdp", "--prod", "md.mdp", "-r", "a", "b"},
			want: []string{"replica", "--equi", "nvt.mdp", "--equi", "npt.mdp", "--prod", "md.mdp", "-r", "a", "-r", "b", "--"},
		},
		{
			name: "inline values",
			argv: []string{"joblaunch", "gmx", "--cores=8", "-m4G", "x.tpr"},
			want: []string{"gmx", "--cores=8", "-m4G", "--", "x.tpr"},
		},
		{
			name: "scanning stops at first positional",
			argv: []string{"joblaunch", "gmx", "run.sh", "-c", "2"},
			want: []string{"gmx", "--", "run.sh", "-c", "2"},
		},
		{
			name: "explicit double dash",
			argv: []string{"joblaunch", "gmx", "-j", "--", "-odd.tpr"},
			want: []string{"gmx", "-j", "--", "-odd.tpr"},
		},
		{
			name: "help after inputs",
			argv: []string{"joblaunch", "gmx", "-c", "4", "a.tpr", "-h", "b.tpr"},
			want: []string{"gmx", "--help"},
		},
		{
			name: "long help after inputs",
			argv: []string{"joblaunch", "gmx", "a.tpr", "--help"},
			want: []string{"gmx", "--help"},
		},
		{
			name: "help after double dash is a file",
			argv: []string{"joblaunch", "gmx", "--", "-h"},
			want: []string{"gmx", "--", "-h"},
		},
		{
			name: "script arguments keep help",
			argv: []string{"joblaunch", "script", "--name", "x", "run.sh", "-h"},
			want: []string{"script", "--name", "x", "--", "run.sh", "-h"},
		},
		{
			name: "short cluster",
			argv: []string{"joblaunch", "gmx", "-jc", "4", "a.tpr"},
			want: []string{"gmx", "-j", "-c", "4", "--", "a.tpr"},
		},
		{
			name: "short cluster with inline value",
			argv: []string{"joblaunch", "gmx", "-jm4G", "a.tpr"},
			want: []string{"gmx", "-j", "-m4G", "--", "a.tpr"},
		},
		{
			name: "legacy launcher name",
			argv: []string{"/usr/local/bin/GMX_replicater", "-n", "3", "--prod", "md.mdp"},
			want: []string{"replica", "-n", "3", "--prod", "md.mdp", "--"},
		},
		{
			name: "unregistered command untouched",
			argv: []string{"joblaunch", "defaults", "-c", "2"},
			want: []string{"defaults", "-c", "2"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PreprocessArgs(tc.argv, testCommands)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreprocessArgsUnknownOption(t *testing.T) {
	for _, argv := range [][]string{
		{"joblaunch", "gmx", "-c", "4", "--bogus", "x.tpr"},
		{"joblaunch", "gmx", "-x", "x.tpr"},
		{"joblaunch", "gmx", "--bogus=1"},
		{"joblaunch", "gmx", "-jx", "x.tpr"},
	} {
		_, err := PreprocessArgs(argv, testCommands)
		var unknown *UnknownOptionError
		if !errors.As(err, &unknown) {
			t.Errorf("%v: got %v, want UnknownOptionError", argv, err)
			continue
		}
		if !strings.HasPrefix(unknown.Option, "-") {
			t.Errorf("%v: option %q", argv, unknown.Option)
		}
	}
}

func TestPreprocessArgsNoInput(t *testing.T) {
	_, err := PreprocessArgs([]string{"joblaunch"}, testCommands)
	var noArgs *NoArgumentsError
	if !errors.As(err, &noArgs) {
		t.Fatalf("got %v, want NoArgumentsError", err)
	}
	// a legacy name alone still selects its command
	args, err := PreprocessArgs([]string{"G16_launcher"}, testCommands)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"gaussian"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}
