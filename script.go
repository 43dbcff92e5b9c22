package main

import (
	"github.com/pkg/errors"

	"joblaunch.io/core"
	"joblaunch.io/logger"
)

type ScriptCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	Name    string          `long:"name" description:"Job name (default: script name)"`
	Options ResourceOptions `group:"Resource Options"`
	Args    struct {
		Script []string `positional-arg-name:"script" description:"Script followed by its own arguments"`
	} `positional-args:"true" passthrough:"true"`
	app *app
}

// directives reads the scheduler directives embedded in the script.
func directives(l *core.Launcher, script string) (core.ScriptDirectives, error) {
	parser, ok := l.Dialect.(core.ScriptParser)
	if !ok {
		return core.ScriptDirectives{}, nil
	}
	f, err := l.Fs.Open(l.Abs(script))
	if err != nil {
		return core.ScriptDirectives{}, errors.Wrap(err, "script: cannot read "+script)
	}
	defer f.Close()
	return parser.ParseScript(f)
}

func (x *ScriptCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Args.Script) == 0 {
		return &core.NoArgumentsError{Command: "script"}
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	script, scriptArgs := x.Args.Script[0], x.Args.Script[1:]
	exe := "bash"
	if program := l.Config.Program(core.ProgramScript); len(program.Executable) > 0 {
		exe = program.Executable
	}
	return core.Batch([]string{script}, func(script string) (int, error) {
		if !l.Exists(script) {
			return 0, &core.MissingFileError{File: script}
		}
		embedded, err := directives(l, script)
		if err != nil {
			return 0, err
		}
		logger.DebugObj("script directives", embedded)
		name := core.JobName(script)
		switch {
		case len(x.Name) > 0:
			name = x.Name
		case len(embedded.Name) > 0:
			name = embedded.Name
		}
		req := &core.JobRequest{
			Name:       name,
			Program:    core.ProgramScript,
			Resources:  l.Config.Resolve(core.ProgramScript, explicit, embedded.Resources),
			InputFiles: []string{script},
			Mode:       x.Options.Mode(),
		}
		body := []string{exe + " " + core.ShellJoin(append([]string{script}, scriptArgs...)...)}
		return l.Launch(x.app.ctx, req, l.NewScript(req, body))
	})
}

func init() {
	addCommand("script",
		"shell script",
		"Submit a shell script; its own #SBATCH lines are honoured below command line flags",
		true,
		func(a *app) interface{} { return &ScriptCommand{app: a} })
}
