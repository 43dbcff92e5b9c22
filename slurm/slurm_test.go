package slurm

import (
	"reflect"
	"strings"
	"testing"

	"joblaunch.io/core"
)

func TestDirectives(t *testing.T) {
	req := &core.JobRequest{
		Name: "water",
		Resources: core.Resources{
			Nodes:    2,
			Cores:    16,
			Memory:   "2000MB",
			Gpus:     1,
			Queue:    "gpu",
			Account:  "chem01",
			NodeList: "node[01-02]",
		},
	}
	want := []string{
		"#SBATCH --job-name water",
		"#SBATCH --output /home/user/msg/water.msg",
		"#SBATCH --error /home/user/msg/water.msg",
		"#SBATCH --partition gpu",
		"#SBATCH --account chem01",
		"#SBATCH --nodes 2",
		"#SBATCH --ntasks-per-node 16",
		"#SBATCH --mem 2000MB",
		"#SBATCH --gres gpu:1",
		"#SBATCH --nodelist node[01-02]",
	}
	got := Dialect{}.Directives(req, "/home/user/msg/water.msg")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, wanted %#v", got, want)
	}
}

func TestDirectivesOmitUnset(t *testing.T) {
	req := &core.JobRequest{Name: "x", Resources: core.Resources{Nodes: 1, Cores: 4}}
	want := []string{
		"#SBATCH --job-name x",
		"#SBATCH --output /m/x.msg",
		"#SBATCH --error /m/x.msg",
		"#SBATCH --nodes 1",
		"#SBATCH --ntasks-per-node 4",
	}
	got := Dialect{}.Directives(req, "/m/x.msg")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, wanted %#v", got, want)
	}
}

func TestParseScript(t *testing.T) {
	script := `#!/bin/bash
#SBATCH --job-name=relax
#SBATCH -p long -N 2
#SBATCH --ntasks-per-node 8
#SBATCH --mem 16G
#SBATCH --gres=gpu:v100:2
#SBATCH --time 2-00:00:00
#SBATCH --bogus-option 3

# not a directive
python relax.py
#SBATCH --account ignored
`
	got, err := ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	want := core.ScriptDirectives{
		Name: "relax",
		Resources: core.Resources{
			Nodes:  2,
			Cores:  8,
			Memory: "16G",
			Gpus:   2,
			Queue:  "long",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, wanted %+v", got, want)
	}
}

func TestParseScriptCpusPerTask(t *testing.T) {
	got, err := ParseScript(strings.NewReader("#SBATCH -c 6\n#SBATCH -G 1\necho\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Resources.Cores != 6 || got.Resources.Gpus != 1 {
		t.Errorf("got %+v", got.Resources)
	}
}

func TestDecodeGpusReq(t *testing.T) {
	if gpus, err := decodeGpusReq("4"); err != nil || gpus != 4 {
		t.Errorf("decodeGpusReq(4) = %d, %v", gpus, err)
	}
	for _, req := range []string{"tesla:2", "", "two"} {
		if _, err := decodeGpusReq(req); err == nil {
			t.Errorf("decodeGpusReq(%q) accepted", req)
		}
	}
}
