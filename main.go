package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"joblaunch.io/core"
	"joblaunch.io/logger"
	"joblaunch.io/sge"
	"joblaunch.io/slurm"
)

// ResourceOptions are shared by every launcher.
type ResourceOptions struct {
	Nodes    int    `long:"nodes" description:"Number of nodes"`
	NodeList string `long:"nodelist" description:"Explicit list of nodes to run on"`
	Cores    int    `short:"c" long:"cores" description:"Cores per node"`
	Memory   string `short:"m" long:"memory" description:"Memory per node, e.g. 2000MB or 4G"`
	Gpus     int    `short:"g" long:"gpus" description:"Number of GPUs"`
	Queue    string `short:"q" long:"queue" description:"Queue (partition)"`
	Account  string `short:"a" long:"account" description:"Account charged for the job"`
	Dry      bool   `short:"j" long:"dry" description:"Write the job file but do not submit it"`
}

// Resources returns the explicitly requested resources. Unset flags stay
// zero so later layers can fill them.
func (o *ResourceOptions) Resources() (core.Resources, error) {
	if o.Nodes < 0 || o.Cores < 0 || o.Gpus < 0 {
		return core.Resources{}, errors.New("nodes, cores and gpus must not be negative")
	}
	if len(o.Memory) > 0 {
		if _, err := core.ParseMemory(o.Memory); err != nil {
			return core.Resources{}, err
		}
	}
	return core.Resources{
		Nodes:    o.Nodes,
		Cores:    o.Cores,
		Memory:   o.Memory,
		Gpus:     o.Gpus,
		Queue:    o.Queue,
		Account:  o.Account,
		NodeList: o.NodeList,
	}, nil
}

func (o *ResourceOptions) Mode() core.Mode {
	if o.Dry {
		return core.ModeDryRun
	}
	return core.ModeSubmit
}

// app is the process environment commands run in.
type app struct {
	ctx        context.Context
	fs         afero.Fs
	runner     core.Runner
	home       string
	workDir    string
	configFile string
	stdout     io.Writer
	stderr     io.Writer
}

func (a *app) config() (*core.Config, error) {
	return core.ReadConfig(a.fs, a.configFile, a.home)
}

func dialect(scheduler string) core.Dialect {
	if scheduler == core.SchedulerSge {
		return sge.Dialect{}
	}
	return slurm.Dialect{}
}

// launcher loads the configuration and creates the shared directories.
func (a *app) launcher() (*core.Launcher, error) {
	config, err := a.config()
	if err != nil {
		return nil, err
	}
	logger.DebugObj("config", config)
	l := &core.Launcher{
		Fs:      a.fs,
		Runner:  a.runner,
		Config:  config,
		Dialect: dialect(config.Scheduler),
		WorkDir: a.workDir,
		Out:     a.stdout,
	}
	if err := l.Prepare(); err != nil {
		return nil, err
	}
	return l, nil
}

type command struct {
	name  string
	short string
	long  string
	// scanned commands get their argv preprocessed against their flags
	scanned bool
	factory func(a *app) interface{}
}

var commands []command

func addCommand(name, short, long string, scanned bool, factory func(a *app) interface{}) {
	commands = append(commands, command{name, short, long, scanned, factory})
}

// newParser builds a parser with fresh command data.
func (a *app) newParser() (*flags.Parser, map[string]interface{}) {
	parser := flags.NewNamedParser("joblaunch", flags.PassDoubleDash)
	scanned := map[string]interface{}{}
	for _, c := range commands {
		data := c.factory(a)
		parser.AddCommand(c.name, c.short, c.long, data)
		if c.scanned {
			scanned[c.name] = data
		}
	}
	return parser, scanned
}

func printHelp(w io.Writer, parser *flags.Parser) {
	// Print help for active command
	if parser.Command.Active != nil {
		parser.Command = parser.Command.Active
	}
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Fprintln(w, b.String())
}

func (a *app) run(argv []string) int {
	var err error
	args := []string{}
	parser, scanned := a.newParser()
	errorf := color.New(color.FgRed).FprintfFunc()
	if args, err = core.PreprocessArgs(argv, scanned); err != nil {
		goto errHandler
	}
	logger.DebugObj("arguments", args)
	if args[0] == "-h" || args[0] == "--help" {
		printHelp(a.stdout, parser)
		return 0
	}
	if _, err = parser.ParseArgs(args); err != nil {
		goto errHandler
	}
	return 0
errHandler:
	switch cause := errors.Cause(err).(type) {
	case *flags.Error:
		if cause.Type == flags.ErrHelp ||
			cause.Type == flags.ErrCommandRequired ||
			cause.Type == flags.ErrRequired {
			printHelp(a.stdout, parser)
			return 0
		} else if cause.Type == flags.ErrUnknownCommand {
			// launcher that does not exist
			errorf(a.stderr, "`%v' not supported\n\n", args[0])
			printHelp(a.stderr, parser)
			return 1
		} else if cause.Type == flags.ErrMarshal {
			errorf(a.stderr, "Invalid syntax: %v\n\n", cause.Message)
			printHelp(a.stderr, parser)
			return 1
		}
		errorf(a.stderr, "%s\n", cause.Error())
		return 1
	case *core.NoArgumentsError:
		errorf(a.stderr, "%s\n\n", cause.Error())
		printHelp(a.stderr, parser)
		return 1
	case *core.ExitError:
		logger.InfoPrintf("%v", cause)
		return cause.Code
	default:
		errorf(a.stderr, "%s\n", err.Error())
		return 1
	}
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a := &app{
		ctx:        context.Background(),
		fs:         afero.NewOsFs(),
		runner:     core.ExecRunner{},
		home:       os.Getenv("HOME"),
		workDir:    wd,
		configFile: core.ConfigFile(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	os.Exit(a.run(os.Args))
}
