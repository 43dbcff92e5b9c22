// Package gromacs builds the shell commands of GROMACS jobs.
package gromacs

import (
	"path/filepath"
	"strconv"
	"strings"

	"joblaunch.io/core"
)

const DefaultExecutable = "gmx"

// Extensions accepted for mdrun inputs
var Extensions = []string{".tpr"}

// Run describes a single mdrun job on a prepared .tpr file.
type Run struct {
	Gmx   string
	Name  string
	Cores int
	Gpus  int
	// Continue from <name>.cpt
	Checkpoint bool
	// Extend the run by this many ps before continuing
	Extend string
	// Dir holding the run input, if not the submission directory
	Dir string
}

func (r Run) gmx() string {
	if len(r.Gmx) == 0 {
		return DefaultExecutable
	}
	return r.Gmx
}

// CheckpointFile is the checkpoint a continued run reads.
func (r Run) CheckpointFile() string {
	return r.Name + ".cpt"
}

// Continues reports whether the run starts from a checkpoint.
func (r Run) Continues() bool {
	return r.Checkpoint || len(r.Extend) > 0
}

// Body returns the job commands. An extension first converts the run
// input, and continued runs rename mdrun's part-numbered outputs back to
// the canonical names at the end.
func (r Run) Body() []string {
	name := core.ShellQuote(r.Name)
	tpr := core.ShellQuote(r.Name + ".tpr")
	var lines []string
	if len(r.Dir) > 0 && r.Dir != "." {
		lines = append(lines, "cd "+core.ShellQuote(r.Dir))
	}
	if len(r.Extend) > 0 {
		ext := core.ShellQuote(r.Name + "_ext.tpr")
		convert := []string{r.gmx(), "convert-tpr", "-s", tpr, "-extend", core.ShellQuote(r.Extend), "-o", ext}
		lines = append(lines, strings.Join(convert, " "))
		tpr = ext
	}
	mdrun := []string{r.gmx(), "mdrun", "-s", tpr, "-deffnm", name, "-ntomp", strconv.Itoa(ntomp(r.Cores))}
	if r.Gpus > 0 {
		mdrun = append(mdrun, "-nb", "gpu")
	}
	if r.Continues() {
		mdrun = append(mdrun, "-cpi", core.ShellQuote(r.CheckpointFile()), "-noappend")
	}
	mdrun = append(mdrun, ">", core.ShellQuote(r.Name+".out"), "2>&1")
	lines = append(lines, strings.Join(mdrun, " "))
	if r.Continues() {
		lines = append(lines, renameParts(r.Name))
	}
	return lines
}

func ntomp(cores int) int {
	if cores < 1 {
		return 1
	}
	return cores
}

// renameParts moves name.partNNNN.ext files written by -noappend back to
// name.ext.
func renameParts(name string) string {
	return `for f in ` + core.ShellQuote(name) + `.part*.*; do mv "$f" ` +
		core.ShellQuote(name) + `."${f##*.}"; done`
}

// Chain is an equilibration and production pipeline run inside one job.
// Each phase is prepared with grompp from the previous phase's
// coordinates and checkpoint, then run with mdrun.
type Chain struct {
	Gmx   string
	Coord string
	Topol string
	Index string
	Equi  []string
	Prod  string
	Cores int
	Gpus  int
	// Dir is a subdirectory the job works in. Relative input paths
	// are adjusted to it.
	Dir string
}

// Phase returns the base name of an mdp file, used as -deffnm.
func Phase(mdp string) string {
	return core.JobName(mdp)
}

func (c Chain) gmx() string {
	if len(c.Gmx) == 0 {
		return DefaultExecutable
	}
	return c.Gmx
}

func (c Chain) input(path string) string {
	if len(c.Dir) > 0 && !filepath.IsAbs(path) {
		path = filepath.Join("..", path)
	}
	return core.ShellQuote(path)
}

// NoEquilibrationWarning is written into the body when the chain has no
// equilibration phases.
const NoEquilibrationWarning = "# WARNING: no equilibration phases, production starts from the input coordinates"

// Body returns the commands of every phase in order: equilibration
// phases first, then production.
func (c Chain) Body() []string {
	var lines []string
	if len(c.Dir) > 0 {
		dir := core.ShellQuote(c.Dir)
		lines = append(lines, "mkdir -p "+dir, "cd "+dir)
	}
	if len(c.Equi) == 0 {
		lines = append(lines, NoEquilibrationWarning)
	}
	prev := ""
	for _, mdp := range c.Equi {
		lines = append(lines, c.prepare(mdp, prev, true), c.run(Phase(mdp)))
		prev = Phase(mdp)
	}
	lines = append(lines, c.prepare(c.Prod, prev, false), c.run(Phase(c.Prod)))
	return lines
}

func (c Chain) prepare(mdp, prev string, restrain bool) string {
	phase := Phase(mdp)
	args := []string{c.gmx(), "grompp", "-f", c.input(mdp)}
	if len(prev) > 0 {
		args = append(args, "-c", core.ShellQuote(prev+".gro"))
	} else {
		args = append(args, "-c", c.input(c.Coord))
	}
	if restrain {
		args = append(args, "-r", c.input(c.Coord))
	}
	args = append(args, "-p", c.input(c.Topol))
	if len(c.Index) > 0 {
		args = append(args, "-n", c.input(c.Index))
	}
	if len(prev) > 0 {
		args = append(args, "-t", core.ShellQuote(prev+".cpt"))
	}
	args = append(args, "-o", core.ShellQuote(phase+".tpr"))
	return strings.Join(args, " ")
}

func (c Chain) run(phase string) string {
	args := []string{c.gmx(), "mdrun", "-deffnm", core.ShellQuote(phase), "-ntomp", strconv.Itoa(ntomp(c.Cores))}
	if c.Gpus > 0 {
		args = append(args, "-nb", "gpu")
	}
	args = append(args, ">", core.ShellQuote(phase+".out"), "2>&1")
	return strings.Join(args, " ")
}
