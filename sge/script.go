package sge

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"joblaunch.io/core"
	"joblaunch.io/logger"
)

// qsub options and the number of values each takes
var qSubArity = map[string]int{
	"-A":   1,
	"-P":   1,
	"-N":   1,
	"-q":   1,
	"-l":   1,
	"-pe":  2,
	"-o":   1,
	"-e":   1,
	"-j":   1,
	"-S":   1,
	"-M":   1,
	"-m":   1,
	"-cwd": 0,
	"-V":   0,
}

// ParseScript reads the #$ lines of a job script, stopping at the first
// line that is neither blank nor a comment. Memory is returned for the
// whole job: h_vmem is multiplied by the requested slots.
func ParseScript(r io.Reader) (core.ScriptDirectives, error) {
	var d core.ScriptDirectives
	var resources []string
	unsupported := map[string]struct{}{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#!") {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		if !strings.HasPrefix(line, DirectivePrefix) {
			continue
		}
		args := strings.Fields(line[len(DirectivePrefix):])
		for i := 0; i < len(args); i++ {
			opt := args[i]
			n, ok := qSubArity[opt]
			if !ok || i+n >= len(args) {
				logger.WarningPrintf("qsub: ignoring %q at %q", opt, line)
				break
			}
			values := args[i+1 : i+1+n]
			i += n
			switch opt {
			case "-N":
				d.Name = values[0]
			case "-q":
				d.Resources.Queue = values[0]
			case "-A", "-P":
				d.Resources.Account = values[0]
			case "-l":
				resources = append(resources, values[0])
			case "-pe":
				if slots, err := strconv.Atoi(values[1]); err == nil {
					d.Resources.Cores = slots
				} else {
					logger.WarningPrintf("qsub: -pe %s: ranges not supported", values[1])
				}
			case "-cwd", "-j", "-o", "-e", "-S":
			default:
				unsupported[opt] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return core.ScriptDirectives{}, err
	}
	res := parseSgeResources(resources)
	if val, ok := res["h_vmem"]; ok {
		if mem, err := jobMemory(val, d.Resources.Cores); err == nil {
			d.Resources.Memory = mem
		} else {
			logger.WarningPrintf("qsub: h_vmem=%s: %v", val, err)
		}
	}
	if val, ok := res["gpu"]; ok {
		if gpus, err := decodeGpusReq(val); err == nil {
			d.Resources.Gpus = gpus
		} else {
			logger.WarningPrintf("qsub: gpu=%s: %v", val, err)
		}
	}
	if val, ok := res["hostname"]; ok {
		d.Resources.NodeList = val
	}
	if len(unsupported) > 0 {
		var names []string
		for k := range unsupported {
			names = append(names, k)
		}
		sort.Strings(names)
		logger.WarningPrintf("%d unsupported options: %s", len(names), strings.Join(names, " "))
	}
	return d, nil
}
