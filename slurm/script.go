package slurm

import (
	"bufio"
	"io"
	"sort"
	"strings"

	flag "github.com/juju/gnuflag"

	"joblaunch.io/core"
	"joblaunch.io/logger"
)

// ParseScript reads the #SBATCH lines of a job script. Like sbatch it
// stops at the first line that is neither blank nor a comment. Lines
// that do not parse are skipped with a warning; options that cannot be
// carried over are dropped with a warning.
func ParseScript(r io.Reader) (core.ScriptDirectives, error) {
	jobSpec := make(map[string]interface{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		if !strings.HasPrefix(line, DirectivePrefix) {
			continue
		}
		args := strings.Fields(line[len(DirectivePrefix):])
		spec, flags, err := parseSBatchArgs(args)
		if err != nil {
			logger.WarningPrintf("%s: ignoring %q", err, line)
			continue
		}
		flags.Visit(func(f *flag.Flag) {
			key, err := lookupGnuArg(f.Name, spec)
			if err != nil {
				return
			}
			jobSpec[key] = f.Value.(flag.Getter).Get()
		})
	}
	if err := scanner.Err(); err != nil {
		return core.ScriptDirectives{}, err
	}
	// Prompt user with unsupported options
	var sBatchUnsupported []string
	for k := range jobSpec {
		if _, ok := sBatchSupportedArgs()[k]; !ok {
			sBatchUnsupported = append(sBatchUnsupported, k)
			delete(jobSpec, k)
		}
	}
	if len(sBatchUnsupported) > 0 {
		sort.Strings(sBatchUnsupported)
		logger.WarningPrintf("%d unsupported options: %s", len(sBatchUnsupported), strings.Join(sBatchUnsupported, " "))
	}
	return scriptDirectives(jobSpec), nil
}

func scriptDirectives(jobSpec map[string]interface{}) core.ScriptDirectives {
	var d core.ScriptDirectives
	if val, ok := jobSpec["job-name"]; ok {
		d.Name = val.(string)
	}
	if val, ok := jobSpec["partition"]; ok {
		d.Resources.Queue = val.(string)
	}
	if val, ok := jobSpec["account"]; ok {
		d.Resources.Account = val.(string)
	}
	if val, ok := jobSpec["nodes"]; ok {
		d.Resources.Nodes = val.(int)
	}
	if val, ok := jobSpec["ntasks-per-node"]; ok {
		d.Resources.Cores = val.(int)
	} else if val, ok := jobSpec["cpus-per-task"]; ok {
		d.Resources.Cores = val.(int)
	}
	if val, ok := jobSpec["mem"]; ok {
		d.Resources.Memory = val.(string)
	}
	if val, ok := jobSpec["nodelist"]; ok {
		d.Resources.NodeList = val.(string)
	}
	if val, ok := jobSpec["gpus"]; ok {
		if gpus, err := decodeGpusReq(val.(string)); err == nil {
			d.Resources.Gpus = gpus
		} else {
			logger.WarningPrintf("sbatch: --gpus %s: %v", val, err)
		}
	} else if val, ok := jobSpec["gres"]; ok {
		if gpus, err := gresGpus(val.(string)); err == nil {
			d.Resources.Gpus = gpus
		} else {
			logger.WarningPrintf("sbatch: --gres %s: %v", val, err)
		}
	}
	return d
}
