package slurm

import (
	"io"
	"strconv"

	"joblaunch.io/core"
)

// Slurm CLI commands
const (
	SBatchName      = "sbatch"
	DirectivePrefix = "#SBATCH"
)

// Dialect writes `#SBATCH <option> <value>` headers and submits with
// sbatch.
type Dialect struct{}

func (Dialect) SubmitCommand() string {
	return SBatchName
}

// Directives returns one directive per line. Unset optional fields
// produce no line.
func (Dialect) Directives(req *core.JobRequest, output string) []string {
	lines := []string{
		directive("--job-name", req.Name),
		directive("--output", output),
		directive("--error", output),
	}
	if len(req.Queue) > 0 {
		lines = append(lines, directive("--partition", req.Queue))
	}
	if len(req.Account) > 0 {
		lines = append(lines, directive("--account", req.Account))
	}
	if req.Nodes > 0 {
		lines = append(lines, directive("--nodes", strconv.Itoa(req.Nodes)))
	}
	if req.Cores > 0 {
		lines = append(lines, directive("--ntasks-per-node", strconv.Itoa(req.Cores)))
	}
	if len(req.Memory) > 0 {
		lines = append(lines, directive("--mem", req.Memory))
	}
	if req.Gpus > 0 {
		lines = append(lines, directive("--gres", "gpu:"+strconv.Itoa(req.Gpus)))
	}
	if len(req.NodeList) > 0 {
		lines = append(lines, directive("--nodelist", req.NodeList))
	}
	return lines
}

func directive(option, value string) string {
	return DirectivePrefix + " " + option + " " + value
}

func (Dialect) ParseScript(r io.Reader) (core.ScriptDirectives, error) {
	return ParseScript(r)
}
