package main

import (
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"joblaunch.io/core"
	"joblaunch.io/gromacs"
	"joblaunch.io/logger"
)

type ReplicaCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	Replica []string        `short:"r" long:"replica" arity:"*" value-name:"NAME" description:"Replica names; one job per replica, each in its own directory"`
	Count   int             `short:"n" value-name:"N" description:"Number of replicas, named rep1..repN"`
	Coord   string          `long:"coord" value-name:"FILE" description:"Starting coordinates"`
	Topol   string          `long:"topol" value-name:"FILE" description:"Topology"`
	Equi    []string        `long:"equi" arity:"*" value-name:"MDP" description:"Equilibration parameter files, run in order"`
	Prod    string          `long:"prod" value-name:"MDP" description:"Production parameter file"`
	Index   string          `long:"index" value-name:"FILE" description:"Index file"`
	Name    string          `long:"name" description:"Job name (default: working directory name)"`
	Options ResourceOptions `group:"Resource Options"`
	app     *app
}

// replicas returns the replica directories, or a single empty name when
// no replicas were requested.
func (x *ReplicaCommand) replicas() []string {
	if len(x.Replica) > 0 {
		if x.Count > 0 {
			logger.WarningPrintf("replica: -n %d ignored, replicas named explicitly", x.Count)
		}
		return x.Replica
	}
	if x.Count > 0 {
		names := make([]string, x.Count)
		for i := range names {
			names[i] = "rep" + strconv.Itoa(i+1)
		}
		return names
	}
	return []string{""}
}

func (x *ReplicaCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Prod) == 0 && len(x.Coord) == 0 && len(x.Topol) == 0 && len(x.Equi) == 0 {
		return &core.NoArgumentsError{Command: "replica"}
	}
	if len(x.Prod) == 0 || len(x.Coord) == 0 || len(x.Topol) == 0 {
		return errors.New("replica: --prod, --coord and --topol are required")
	}
	if len(args) > 0 {
		logger.WarningPrintf("replica: ignoring arguments %v", args)
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	inputs := append(append([]string{}, x.Equi...), x.Prod)
	aux := []string{x.Coord, x.Topol}
	if len(x.Index) > 0 {
		aux = append(aux, x.Index)
	}
	for _, file := range append(append([]string{}, inputs...), aux...) {
		if !l.Exists(file) {
			return &core.MissingFileError{File: file}
		}
	}
	name := x.Name
	if len(name) == 0 {
		name = filepath.Base(l.WorkDir)
	}
	if err := core.ValidateName(name); err != nil {
		return err
	}
	if len(x.Equi) == 0 {
		logger.WarningPrintf("replica: no equilibration phases given, production starts from %s", x.Coord)
	}

	res := l.Config.Resolve(core.ProgramGromacs, explicit)
	program := l.Config.Program(core.ProgramGromacs)
	return core.Batch(x.replicas(), func(replica string) (int, error) {
		req := &core.JobRequest{
			Name:       name,
			Program:    core.ProgramGromacs,
			Resources:  res,
			InputFiles: inputs,
			AuxFiles:   aux,
			Mode:       x.Options.Mode(),
		}
		if len(replica) > 0 {
			req.Name = name + "_" + replica
		}
		chain := gromacs.Chain{
			Gmx:   program.Executable,
			Coord: x.Coord,
			Topol: x.Topol,
			Index: x.Index,
			Equi:  x.Equi,
			Prod:  x.Prod,
			Cores: res.Cores,
			Gpus:  res.Gpus,
			Dir:   replica,
		}
		return l.Launch(x.app.ctx, req, l.NewScript(req, chain.Body()))
	})
}

func init() {
	addCommand("replica",
		"GROMACS equilibration and production chain",
		"Submit an equilibration -> production GROMACS pipeline, optionally once per replica",
		true,
		func(a *app) interface{} { return &ReplicaCommand{app: a} })
}
