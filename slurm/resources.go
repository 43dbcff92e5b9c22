package slurm

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

type slurmGres struct {
	Type  string
	Count string
}

type slurmResources map[string]slurmGres

// parseSlurmResources splits a --gres list of name[[:type]:count] entries.
func parseSlurmResources(resources string) slurmResources {
	res := slurmResources{}

	for _, resource := range strings.Split(resources, ",") {
		split := strings.Split(resource, ":")
		if len(split) == 1 {
			res[split[0]] = slurmGres{
				Count: "1",
			}
		} else if len(split) == 2 {
			res[split[0]] = slurmGres{
				Count: split[1],
			}
		} else if len(split) == 3 {
			res[split[0]] = slurmGres{
				Type:  split[1],
				Count: split[2],
			}
		}
	}

	return res
}

var (
	gpuType  = regexp.MustCompile("^[a-zA-Z0-9_-]+:")
	gpuCount = regexp.MustCompile("^[0-9]+$")
)

// decodeGpusReq reads a --gpus value, [type:]count. Typed requests are
// rejected since job headers only carry a count.
func decodeGpusReq(req string) (gpus int, err error) {
	if gpuType.MatchString(req) {
		err = errors.New("GPU type not supported")
		return
	}
	if match := gpuCount.FindString(req); len(match) > 0 {
		if numGpus, perr := strconv.ParseInt(match, 10, 64); perr == nil {
			gpus = int(numGpus)
			return
		}
	}
	err = errors.New("Invalid gpu request")
	return
}

// gresGpus returns the GPU count of a --gres list. The GPU type is
// dropped.
func gresGpus(gres string) (int, error) {
	gpu, ok := parseSlurmResources(gres)["gpu"]
	if !ok {
		return 0, nil
	}
	return decodeGpusReq(gpu.Count)
}
