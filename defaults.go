package main

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"joblaunch.io/core"
)

type DefaultsCommand struct {
	Help bool                `short:"h" long:"help" description:"Show this help message"`
	Show DefaultsShowCommand `command:"show"`
	Set  DefaultsSetCommand  `command:"set"`
}

type DefaultsShowCommand struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	Program string `short:"p" long:"program" description:"Show only this program's entry"`
	app     *app
}

type DefaultsSetCommand struct {
	Help          bool            `short:"h" long:"help" description:"Show this help message"`
	Program       string          `short:"p" long:"program" description:"Change this program's entry instead of the global defaults"`
	Scheduler     string          `long:"scheduler" choice:"slurm" choice:"sge" description:"Batch scheduler"`
	SubmitCommand string          `long:"submit-command" description:"Command used to submit job files"`
	MessagesDir   string          `long:"messages-dir" description:"Directory receiving job output"`
	ArchiveDir    string          `long:"archive-dir" description:"Directory receiving submitted job files"`
	Modules       []string        `long:"module" description:"Environment module to load (repeatable, replaces the list)"`
	Executable    string          `long:"executable" description:"Program executable"`
	Options       ResourceOptions `group:"Resource Options"`
	app           *app
}

func (x *DefaultsCommand) Execute(args []string) error {
	return core.CreateHelpErr()
}

func (x *DefaultsShowCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	config, err := x.app.config()
	if err != nil {
		return err
	}
	var v interface{} = config
	if len(x.Program) > 0 {
		program, ok := config.Programs[x.Program]
		if !ok {
			return errors.Errorf("defaults: no program %q", x.Program)
		}
		v = program
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "defaults: marshal")
	}
	fmt.Fprint(x.app.stdout, string(data))
	return nil
}

// apply merges the flags given on the command line into config.
func (x *DefaultsSetCommand) apply(config *core.Config) error {
	res, err := x.Options.Resources()
	if err != nil {
		return err
	}
	if len(x.Program) == 0 {
		if len(x.Modules) > 0 || len(x.Executable) > 0 {
			return errors.New("defaults: --module and --executable need --program")
		}
		config.Defaults = res.Or(config.Defaults)
	} else {
		if config.Programs == nil {
			config.Programs = map[string]core.Program{}
		}
		program := config.Programs[x.Program]
		program.Defaults = res.Or(program.Defaults)
		if len(x.Modules) > 0 {
			program.Modules = x.Modules
		}
		if len(x.Executable) > 0 {
			program.Executable = x.Executable
		}
		config.Programs[x.Program] = program
	}
	if len(x.Scheduler) > 0 {
		config.Scheduler = x.Scheduler
	}
	if len(x.SubmitCommand) > 0 {
		config.SubmitCommand = x.SubmitCommand
	}
	if len(x.MessagesDir) > 0 {
		config.MessagesDir = x.MessagesDir
	}
	if len(x.ArchiveDir) > 0 {
		config.ArchiveDir = x.ArchiveDir
	}
	return nil
}

func (x *DefaultsSetCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	config, err := x.app.config()
	if err != nil {
		return err
	}
	if err := x.apply(config); err != nil {
		return err
	}
	if x.Options.Dry {
		data, err := yaml.Marshal(config)
		if err != nil {
			return errors.Wrap(err, "defaults: marshal")
		}
		fmt.Fprint(x.app.stdout, string(data))
		return nil
	}
	if err := core.WriteConfig(x.app.fs, x.app.configFile, config); err != nil {
		return err
	}
	fmt.Fprintf(x.app.stdout, "defaults written to %s\n", x.app.configFile)
	return nil
}

func init() {
	addCommand("defaults",
		"Launcher defaults",
		"The defaults command shows and changes the configuration file used by every launcher",
		false,
		func(a *app) interface{} {
			return &DefaultsCommand{
				Show: DefaultsShowCommand{app: a},
				Set:  DefaultsSetCommand{app: a},
			}
		})
}
