package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"joblaunch.io/core"
	"joblaunch.io/gaussian"
	"joblaunch.io/logger"
)

type GaussianCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	IgnChk  bool            `long:"ign-chk" description:"Ignore %Chk in the input and use <name>.chk"`
	Fchk    bool            `long:"fchk" description:"Run formchk on the checkpoint after the job"`
	G09     bool            `long:"g09" description:"Use Gaussian 09 instead of Gaussian 16"`
	Nbo     bool            `long:"nbo" description:"Load the NBO module"`
	Options ResourceOptions `group:"Resource Options"`
	Args    struct {
		Inputs []string `positional-arg-name:"input.com" description:"Gaussian inputs (.com or .gjf), one job each"`
	} `positional-args:"true"`
	app *app
}

func (x *GaussianCommand) program() (string, string) {
	if x.G09 {
		return core.ProgramGaussian09, "g09"
	}
	return core.ProgramGaussian, "g16"
}

// Execute rewrites the Link 0 block of every input in place so that
// %NProcShared, %Mem and %Chk match the job request. Dry runs leave the
// inputs untouched.
func (x *GaussianCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Args.Inputs) == 0 {
		return &core.NoArgumentsError{Command: "gaussian"}
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	programName, exe := x.program()
	if program := l.Config.Program(programName); len(program.Executable) > 0 {
		exe = program.Executable
	}
	return core.Batch(x.Args.Inputs, func(input string) (int, error) {
		name, err := l.Input(input, gaussian.Extensions...)
		if err != nil {
			return 0, err
		}
		content, err := afero.ReadFile(l.Fs, l.Abs(input))
		if err != nil {
			return 0, errors.Wrap(err, "gaussian: cannot read "+input)
		}
		directives := gaussian.Parse(content)
		req := &core.JobRequest{
			Name:       name,
			Program:    programName,
			Resources:  l.Config.Resolve(programName, explicit, directives.Resources()),
			InputFiles: []string{input},
			Mode:       x.Options.Mode(),
		}
		chk := name + ".chk"
		if val, ok := directives[gaussian.KeyChk]; ok && !x.IgnChk {
			chk = val
		}
		req.AuxFiles = []string{chk}
		block := gaussian.Block{Cores: req.Cores, Memory: req.Memory, Chk: chk}
		if req.Mode == core.ModeDryRun {
			logger.InfoPrintf("%s: dry run, input not rewritten", input)
		} else if err := gaussian.RewriteFile(l.Fs, l.Abs(input), block); err != nil {
			return 0, err
		}

		body := []string{exe + " < " + core.ShellQuote(input) + " > " + core.ShellQuote(name+".log")}
		if x.Fchk {
			body = append(body, core.ShellJoin("formchk", chk, name+".fchk"))
		}
		script := l.NewScript(req, body)
		if x.Nbo {
			script.Load = append(script.Load, l.Config.Program(core.ProgramNbo).Modules...)
		}
		return l.Launch(x.app.ctx, req, script)
	})
}

func init() {
	addCommand("gaussian",
		"Gaussian",
		"Submit one Gaussian job per input. Inputs are rewritten in place with a %NProcShared/%Mem/%Chk block matching the job",
		true,
		func(a *app) interface{} { return &GaussianCommand{app: a} })
}
