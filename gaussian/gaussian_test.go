package gaussian

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"joblaunch.io/core"
)

const waterInput = `%NProcShared=4
%mem=2000MB
%Chk=old.chk
# B3LYP/6-31G(d) Opt

water

0 1
O
H 1 0.96
H 1 0.96 2 104.5

`

func TestParse(t *testing.T) {
	d := Parse([]byte(waterInput + "%Mem=9GB\n"))
	want := Directives{"nprocshared": "4", "mem": "2000MB", "chk": "old.chk"}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(core.Resources{Cores: 4, Memory: "2000MB"}, d.Resources()); diff != "" {
		t.Errorf("resources mismatch (-want +got):\n%s", diff)
	}
}

func TestCoresFromNProc(t *testing.T) {
	if got := Parse([]byte("%NPROC=6\n")).Cores(); got != 6 {
		t.Errorf("Cores() = %d, want 6", got)
	}
}

func TestMemoryPrecedence(t *testing.T) {
	config := core.DefaultConfig("/home/user")
	embedded := Parse([]byte(waterInput)).Resources()

	res := config.Resolve(core.ProgramGaussian, core.Resources{}, embedded)
	if res.Memory != "2000MB" {
		t.Errorf("memory from directive = %q, want 2000MB", res.Memory)
	}
	res = config.Resolve(core.ProgramGaussian, core.Resources{Memory: "4000MB"}, embedded)
	if res.Memory != "4000MB" {
		t.Errorf("memory with flag = %q, want 4000MB", res.Memory)
	}
}

func TestRewrite(t *testing.T) {
	got := Rewrite([]byte(waterInput), Block{Cores: 8, Memory: "4G", Chk: "water.chk"})
	want := `%NProcShared=8
%Mem=4GB
%Chk=water.chk
# B3LYP/6-31G(d) Opt

water

0 1
O
H 1 0.96
H 1 0.96 2 104.5

`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("rewrite mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteCRLF(t *testing.T) {
	input := "%Mem=1GB\r\n# opt\r\n\r\nt\r\n\r\n0 1\r\nHe\r\n\r\n--Link1--\r\n# freq\r\n"
	got := Rewrite([]byte(input), Block{Cores: 2, Memory: "2GB"})
	want := "%NProcShared=2\r\n%Mem=2GB\r\n# opt\r\n\r\nt\r\n\r\n0 1\r\nHe\r\n\r\n" +
		"--Link1--\r\n%NProcShared=2\r\n%Mem=2GB\r\n# freq\r\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("rewrite mismatch (-want +got):\n%s", diff)
	}
	if d := Parse([]byte(input)); d[KeyMem] != "1GB" {
		t.Errorf("%%Mem = %q", d[KeyMem])
	}
}

func TestRewriteLinkSections(t *testing.T) {
	input := `%Chk=a.chk
# opt

t

0 1
He

--Link1--
%Mem=1GB
# freq geom=check

t

0 1

`
	want := `%NProcShared=2
%Mem=1GB
%Chk=a.chk
# opt

t

0 1
He

--Link1--
%NProcShared=2
%Mem=1GB
%Chk=a.chk
%Mem=1GB
# freq geom=check

t

0 1

`
	got := Rewrite([]byte(input), Block{Cores: 2, Memory: "1GB", Chk: "a.chk"})
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("rewrite mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteIdempotent(t *testing.T) {
	block := Block{Cores: 4, Memory: "2000MB", Chk: "water.chk"}
	once := Rewrite([]byte(waterInput), block)
	twice := Rewrite(once, block)
	if diff := cmp.Diff(string(once), string(twice)); diff != "" {
		t.Errorf("second rewrite changed the input (-once +twice):\n%s", diff)
	}
}

func TestRewriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/work/water.com", []byte(waterInput), 0640)
	if err := RewriteFile(fs, "/work/water.com", Block{Cores: 4, Memory: "2000MB", Chk: "water.chk"}); err != nil {
		t.Fatal(err)
	}
	data, _ := afero.ReadFile(fs, "/work/water.com")
	if diff := cmp.Diff(string(Rewrite([]byte(waterInput), Block{Cores: 4, Memory: "2000MB", Chk: "water.chk"})), string(data)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
	info, _ := fs.Stat("/work/water.com")
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	entries, _ := afero.ReadDir(fs, "/work")
	if len(entries) != 1 {
		t.Errorf("temporary file left behind")
	}
}

func TestGaussianMemory(t *testing.T) {
	tests := map[string]string{
		"2000MB": "2000MB",
		"4G":     "4GB",
		"16gb":   "16gb",
		"2000":   "2000MB",
		"500MW":  "500MW",
	}
	for in, want := range tests {
		if got := GaussianMemory(in); got != want {
			t.Errorf("GaussianMemory(%q) = %q, want %q", in, got, want)
		}
	}
}
