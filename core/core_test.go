package core

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestReadConfigMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	config, err := ReadConfig(fs, "/home/user/.config/joblaunch/config.yaml", "/home/user")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig("/home/user"), config); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := `scheduler: sge
messages_dir: ~/logs
archive_dir: /scratch/jobs
defaults:
  cores: 4
  queue: short
programs:
  gromacs:
    executable: gmx_mpi
    modules: [gromacs/2023]
    defaults:
      gpus: 1
`
	afero.WriteFile(fs, "/etc/joblaunch.yaml", []byte(data), 0644)
	config, err := ReadConfig(fs, "/etc/joblaunch.yaml", "/home/user")
	if err != nil {
		t.Fatal(err)
	}
	if config.Scheduler != SchedulerSge {
		t.Errorf("scheduler = %q", config.Scheduler)
	}
	if config.MessagesDir != "/home/user/logs" {
		t.Errorf("messages dir = %q", config.MessagesDir)
	}
	if config.ArchiveDir != "/scratch/jobs" {
		t.Errorf("archive dir = %q", config.ArchiveDir)
	}
	// yaml.v3 decodes over the defaults: unset fields keep their value
	want := Resources{Nodes: 1, Cores: 4, Memory: "2G", Queue: "short"}
	if diff := cmp.Diff(want, config.Defaults); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	gmx := config.Program(ProgramGromacs)
	if gmx.Executable != "gmx_mpi" || gmx.Defaults.Gpus != 1 {
		t.Errorf("gromacs program = %+v", gmx)
	}
	if len(config.Program(ProgramOrca).Executable) == 0 {
		t.Errorf("built-in orca entry lost")
	}
}

func TestReadConfigPartialProgram(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := `programs:
  gromacs:
    defaults:
      cores: 8
  gaussian:
    unload: []
  amber:
    executable: pmemd
`
	afero.WriteFile(fs, "/c.yaml", []byte(data), 0644)
	config, err := ReadConfig(fs, "/c.yaml", "/home/user")
	if err != nil {
		t.Fatal(err)
	}
	builtin := DefaultConfig("/home/user").Programs

	want := builtin[ProgramGromacs]
	want.Defaults.Cores = 8
	if diff := cmp.Diff(want, config.Program(ProgramGromacs)); diff != "" {
		t.Errorf("gromacs mismatch (-want +got):\n%s", diff)
	}
	want = builtin[ProgramGaussian]
	want.Unload = []string{}
	if diff := cmp.Diff(want, config.Program(ProgramGaussian)); diff != "" {
		t.Errorf("gaussian mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Program{Executable: "pmemd"}, config.Program("amber")); diff != "" {
		t.Errorf("amber mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(builtin[ProgramOrca], config.Program(ProgramOrca)); diff != "" {
		t.Errorf("orca mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfigUnknownScheduler(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/c.yaml", []byte("scheduler: pbs\n"), 0644)
	if _, err := ReadConfig(fs, "/c.yaml", "/home/user"); err == nil {
		t.Fatal("unknown scheduler accepted")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := DefaultConfig("/home/user")
	config.Defaults.Account = "chem01"
	filename := "/home/user/.config/joblaunch/config.yaml"
	if err := WriteConfig(fs, filename, config); err != nil {
		t.Fatal(err)
	}
	info, err := fs.Stat(filename)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != os.FileMode(JoblaunchConfigFilePerms) {
		t.Errorf("perms = %v", info.Mode().Perm())
	}
	got, err := ReadConfig(fs, filename, "/home/user")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFileFromEnv(t *testing.T) {
	t.Setenv(JoblaunchConfigEnv, "/tmp/other.yaml")
	if got := ConfigFile(); got != "/tmp/other.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
	t.Setenv(JoblaunchConfigEnv, "")
	t.Setenv("HOME", "/home/user")
	if got := ConfigFile(); got != "/home/user/.config/joblaunch/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
}
