package sge

import (
	"io"
	"strconv"

	"joblaunch.io/core"
	"joblaunch.io/logger"
)

// SGE CLI commands
const (
	QSubName        = "qsub"
	DirectivePrefix = "#$"
	ParallelEnv     = "smp"
)

// Dialect writes `#$ <option> <value>` headers and submits with qsub.
type Dialect struct{}

func (Dialect) SubmitCommand() string {
	return QSubName
}

// Directives returns one directive per line. SGE requests memory per
// slot, so the job memory is divided over nodes*cores slots.
func (Dialect) Directives(req *core.JobRequest, output string) []string {
	lines := []string{
		directive("-N", req.Name),
		directive("-o", output),
		directive("-j", "y"),
		DirectivePrefix + " -cwd",
		directive("-S", core.DefaultShell),
	}
	if len(req.Queue) > 0 {
		lines = append(lines, directive("-q", req.Queue))
	}
	if len(req.Account) > 0 {
		lines = append(lines, directive("-A", req.Account))
	}
	slots := req.Slots()
	if req.Nodes > 0 || req.Cores > 0 {
		lines = append(lines, directive("-pe", ParallelEnv+" "+strconv.Itoa(slots)))
	}
	if len(req.Memory) > 0 {
		if mem, err := perSlotMemory(req.Memory, slots); err == nil {
			lines = append(lines, directive("-l", "h_vmem="+strconv.Itoa(mem)+"M"))
		} else {
			logger.WarningPrintf("%s: %v, no memory request written", req.Name, err)
		}
	}
	if req.Gpus > 0 {
		lines = append(lines, directive("-l", "gpu="+strconv.Itoa(req.Gpus)))
	}
	if len(req.NodeList) > 0 {
		lines = append(lines, directive("-l", "hostname="+req.NodeList))
	}
	return lines
}

func directive(option, value string) string {
	return DirectivePrefix + " " + option + " " + value
}

func (Dialect) ParseScript(r io.Reader) (core.ScriptDirectives, error) {
	return ParseScript(r)
}
