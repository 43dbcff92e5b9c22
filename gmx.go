package main

import (
	"path/filepath"

	"joblaunch.io/core"
	"joblaunch.io/gromacs"
	"joblaunch.io/logger"
)

type GmxCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	Cpi     bool            `long:"cpi" description:"Continue from <name>.cpt"`
	Extend  string          `long:"extend" value-name:"PS" description:"Extend the run by PS picoseconds and continue from <name>.cpt"`
	Options ResourceOptions `group:"Resource Options"`
	Args    struct {
		Inputs []string `positional-arg-name:"input.tpr" description:"GROMACS run inputs, one job each"`
	} `positional-args:"true"`
	app *app
}

func (x *GmxCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Args.Inputs) == 0 {
		return &core.NoArgumentsError{Command: "gmx"}
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	program := l.Config.Program(core.ProgramGromacs)
	return core.Batch(x.Args.Inputs, func(input string) (int, error) {
		name, err := l.Input(input, gromacs.Extensions...)
		if err != nil {
			return 0, err
		}
		req := &core.JobRequest{
			Name:       name,
			Program:    core.ProgramGromacs,
			Resources:  l.Config.Resolve(core.ProgramGromacs, explicit),
			InputFiles: []string{input},
			Mode:       x.Options.Mode(),
		}
		run := gromacs.Run{
			Gmx:        program.Executable,
			Name:       name,
			Cores:      req.Cores,
			Gpus:       req.Gpus,
			Checkpoint: x.Cpi,
			Extend:     x.Extend,
			Dir:        filepath.Dir(input),
		}
		if run.Continues() {
			cpt := filepath.Join(filepath.Dir(input), run.CheckpointFile())
			if !l.Exists(cpt) {
				// the checkpoint may still be written by a running job
				logger.WarningPrintf("%s: %s not found", name, cpt)
			}
			req.AuxFiles = append(req.AuxFiles, cpt)
		}
		return l.Launch(x.app.ctx, req, l.NewScript(req, run.Body()))
	})
}

func init() {
	addCommand("gmx",
		"GROMACS mdrun",
		"Submit one GROMACS mdrun job per .tpr input",
		true,
		func(a *app) interface{} { return &GmxCommand{app: a} })
}
