package main

import (
	"path/filepath"
	"strconv"

	"joblaunch.io/core"
	"joblaunch.io/logger"
)

// VASP input files every calculation directory needs
var vaspInputs = []string{"INCAR", "POSCAR", "POTCAR", "KPOINTS"}

type VaspCommand struct {
	Help    bool            `short:"h" long:"help" description:"Show this help message"`
	Dir     string          `long:"dir" value-name:"DIRECTORY" description:"Calculation directory (default: working directory)"`
	Name    string          `long:"name" description:"Job name (default: directory name)"`
	Options ResourceOptions `group:"Resource Options"`
	Args    struct {
		Dirs []string `positional-arg-name:"directory" description:"More calculation directories, one job each"`
	} `positional-args:"true"`
	app *app
}

func (x *VaspCommand) dirs() []string {
	var dirs []string
	if len(x.Dir) > 0 {
		dirs = append(dirs, x.Dir)
	}
	dirs = append(dirs, x.Args.Dirs...)
	if len(dirs) == 0 {
		dirs = append(dirs, ".")
	}
	return dirs
}

func (x *VaspCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	explicit, err := x.Options.Resources()
	if err != nil {
		return err
	}
	l, err := x.app.launcher()
	if err != nil {
		return err
	}
	dirs := x.dirs()
	if len(x.Name) > 0 && len(dirs) > 1 {
		logger.WarningPrintf("vasp: --name ignored for %d directories", len(dirs))
	}
	exe := "vasp_std"
	if program := l.Config.Program(core.ProgramVasp); len(program.Executable) > 0 {
		exe = program.Executable
	}
	return core.Batch(dirs, func(dir string) (int, error) {
		if !l.IsDir(dir) {
			return 0, &core.MissingFileError{File: dir}
		}
		var inputs []string
		for _, input := range vaspInputs {
			path := filepath.Join(dir, input)
			if !l.Exists(path) {
				return 0, &core.MissingFileError{File: path}
			}
			inputs = append(inputs, path)
		}
		name := filepath.Base(l.Abs(dir))
		if len(x.Name) > 0 && len(dirs) == 1 {
			name = x.Name
		}
		if err := core.ValidateName(name); err != nil {
			return 0, err
		}
		req := &core.JobRequest{
			Name:       name,
			Program:    core.ProgramVasp,
			Resources:  l.Config.Resolve(core.ProgramVasp, explicit),
			InputFiles: inputs,
			Mode:       x.Options.Mode(),
		}
		var body []string
		if filepath.Clean(dir) != "." {
			body = append(body, "cd "+core.ShellQuote(dir))
		}
		body = append(body, "mpirun -np "+strconv.Itoa(req.Slots())+" "+exe+" > vasp.out 2>&1")
		return l.Launch(x.app.ctx, req, l.NewScript(req, body))
	})
}

func init() {
	addCommand("vasp",
		"VASP",
		"Submit a VASP calculation for a directory holding INCAR, POSCAR, POTCAR and KPOINTS",
		true,
		func(a *app) interface{} { return &VaspCommand{app: a} })
}
