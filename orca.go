package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"joblaunch.io/core"
	"joblaunch.io/logger"
	"joblaunch.io/orca"
)

type OrcaCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	Name    string          `long:"name" description:"Job name (single input only)"`
	Options ResourceOptions `group:"Resource Options"`
	Args    struct {
		Inputs []string `positional-arg-name:"input.inp" description:"ORCA inputs, one job each"`
	} `positional-args:"true"`
	app *app
}

func (x *OrcaCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Args.Inputs) == 0 {
		return &core.NoArgumentsError{Command: "orca"}
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	if len(x.Name) > 0 && len(x.Args.Inputs) > 1 {
		logger.WarningPrintf("orca: --name ignored for %d inputs", len(x.Args.Inputs))
	}
	exe := "orca"
	if program := l.Config.Program(core.ProgramOrca); len(program.Executable) > 0 {
		exe = program.Executable
	}
	return core.Batch(x.Args.Inputs, func(input string) (int, error) {
		name, err := l.Input(input, orca.Extensions...)
		if err != nil {
			return 0, err
		}
		if len(x.Name) > 0 && len(x.Args.Inputs) == 1 {
			name = x.Name
		}
		content, err := afero.ReadFile(l.Fs, l.Abs(input))
		if err != nil {
			return 0, errors.Wrap(err, "orca: cannot read "+input)
		}
		req := &core.JobRequest{
			Name:       name,
			Program:    core.ProgramOrca,
			Resources:  l.Config.Resolve(core.ProgramOrca, explicit, orca.Parse(content).Resources()),
			InputFiles: []string{input},
			Mode:       x.Options.Mode(),
		}
		// parallel ORCA needs to be started by its full path
		body := []string{"$(which " + exe + ") " + core.ShellQuote(input) + " > " + core.ShellQuote(name+".out")}
		return l.Launch(x.app.ctx, req, l.NewScript(req, body))
	})
}

func init() {
	addCommand("orca",
		"ORCA",
		"Submit one ORCA job per .inp input",
		true,
		func(a *app) interface{} { return &OrcaCommand{app: a} })
}
