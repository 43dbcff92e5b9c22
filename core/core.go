package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	JoblaunchConfigPath      = "/.config/joblaunch/"
	JoblaunchConfigFilename  = "config.yaml"
	JoblaunchConfigFilePerms = 0600
)

const JoblaunchConfigEnv = "JOBLAUNCH_CONFIG"

// Scheduler names accepted in the config file
const (
	SchedulerSlurm = "slurm"
	SchedulerSge   = "sge"
)

// Program names used as keys of Config.Programs
const (
	ProgramGromacs    = "gromacs"
	ProgramGaussian   = "gaussian"
	ProgramGaussian09 = "gaussian-g09"
	ProgramNbo        = "nbo"
	ProgramOrca       = "orca"
	ProgramVasp       = "vasp"
	ProgramScript     = "script"
)

// Program holds the environment and defaults of one target executable.
type Program struct {
	Executable string    `yaml:"executable,omitempty"`
	Modules    []string  `yaml:"modules,omitempty"`
	Unload     []string  `yaml:"unload,omitempty"`
	Defaults   Resources `yaml:"defaults,omitempty"`
}

// Layout for the defaults file
/*
scheduler: slurm
messages_dir: ~/msg
archive_dir: ~/jobs
defaults:
  nodes: 1
  cores: 1
  memory: 2G
  queue: short
programs:
  gromacs:
    executable: gmx
    modules: [gromacs]
    defaults:
      cores: 8
*/
type Config struct {
	Scheduler     string             `yaml:"scheduler"`
	SubmitCommand string             `yaml:"submit_command,omitempty"`
	MessagesDir   string             `yaml:"messages_dir"`
	ArchiveDir    string             `yaml:"archive_dir"`
	Defaults      Resources          `yaml:"defaults"`
	Programs      map[string]Program `yaml:"programs"`
}

// DefaultConfig is used when no defaults file exists. Directory roots
// are relative to home.
func DefaultConfig(home string) *Config {
	return &Config{
		Scheduler:   SchedulerSlurm,
		MessagesDir: filepath.Join(home, "msg"),
		ArchiveDir:  filepath.Join(home, "jobs"),
		Defaults: Resources{
			Nodes:  1,
			Cores:  1,
			Memory: "2G",
		},
		Programs: map[string]Program{
			ProgramGromacs: {
				Executable: "gmx",
				Modules:    []string{"gromacs"},
			},
			ProgramGaussian: {
				Executable: "g16",
				Unload:     []string{"gaussian"},
				Modules:    []string{"gaussian/g16"},
			},
			ProgramGaussian09: {
				Executable: "g09",
				Unload:     []string{"gaussian"},
				Modules:    []string{"gaussian/g09"},
			},
			ProgramNbo: {
				Modules: []string{"nbo"},
			},
			ProgramOrca: {
				Executable: "orca",
				Modules:    []string{"orca"},
			},
			ProgramVasp: {
				Executable: "vasp_std",
				Modules:    []string{"vasp"},
			},
			ProgramScript: {
				Executable: "bash",
			},
		},
	}
}

// Program returns the named program entry; unknown names yield an empty
// entry so callers fall back to global defaults.
func (c *Config) Program(name string) Program {
	if p, ok := c.Programs[name]; ok {
		return p
	}
	return Program{}
}

// Resolve fills every unset field of explicit from the program defaults
// and then from the global defaults. Layers given in between (values
// embedded in input files) take precedence over both defaults.
func (c *Config) Resolve(program string, explicit Resources, embedded ...Resources) Resources {
	res := explicit
	for _, layer := range embedded {
		res = res.Or(layer)
	}
	return res.Or(c.Program(program).Defaults).Or(c.Defaults)
}

// SubmitCmd returns the scheduler submission command.
func (c *Config) SubmitCmd(fallback string) string {
	if len(c.SubmitCommand) > 0 {
		return c.SubmitCommand
	}
	return fallback
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func fileExist(fs afero.Fs, filename string) bool {
	info, err := fs.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Build path for config file
// Set from environment or use $HOME
func ConfigFile() string {
	if configPath := os.Getenv(JoblaunchConfigEnv); len(configPath) > 0 {
		return configPath
	}
	return filepath.Join(os.Getenv("HOME"), JoblaunchConfigPath, JoblaunchConfigFilename)
}

// mergePrograms lays the program entries of a config file over the
// built-in ones. Fields a file entry leaves out keep the built-in value;
// an explicit empty list (modules: []) clears it.
func mergePrograms(builtin, file map[string]Program) map[string]Program {
	merged := make(map[string]Program, len(builtin)+len(file))
	for name, p := range builtin {
		merged[name] = p
	}
	for name, p := range file {
		base := builtin[name]
		if len(p.Executable) == 0 {
			p.Executable = base.Executable
		}
		if p.Modules == nil {
			p.Modules = base.Modules
		}
		if p.Unload == nil {
			p.Unload = base.Unload
		}
		p.Defaults = p.Defaults.Or(base.Defaults)
		merged[name] = p
	}
	return merged
}

// ReadConfig loads filename over the built-in defaults. A missing file is
// not an error.
func ReadConfig(fs afero.Fs, filename, home string) (*Config, error) {
	config := DefaultConfig(home)
	if fileExist(fs, filename) {
		data, err := afero.ReadFile(fs, filename)
		if err != nil {
			return nil, errors.Wrap(err, "config: cannot read "+filename)
		}
		builtin := config.Programs
		config.Programs = nil
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrap(err, "config: invalid "+filename)
		}
		config.Programs = mergePrograms(builtin, config.Programs)
	}
	switch config.Scheduler {
	case SchedulerSlurm, SchedulerSge:
	case "":
		config.Scheduler = SchedulerSlurm
	default:
		return nil, errors.Errorf("config: unknown scheduler %q", config.Scheduler)
	}
	config.MessagesDir = expandHome(config.MessagesDir, home)
	config.ArchiveDir = expandHome(config.ArchiveDir, home)
	return config, nil
}

func WriteConfig(fs afero.Fs, filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	if err := fs.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "config: cannot create directory")
	}
	return WriteFileAtomic(fs, filename, data, JoblaunchConfigFilePerms)
}
