package sge

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"joblaunch.io/core"
)

// parseSgeResources collects name=value pairs from -l lists.
func parseSgeResources(resources []string) map[string]string {
	res := map[string]string{}

	for _, resource := range resources {
		for _, flag := range strings.Split(resource, ",") {
			split := strings.Split(flag, "=")
			// save valid pairs (foo=bar)
			if len(split) == 2 {
				res[split[0]] = split[1]
			}
		}
	}

	return res
}

// perSlotMemory converts a job memory request into megabytes per slot,
// rounded up.
func perSlotMemory(req string, slots int) (int, error) {
	mem, err := core.ParseMemory(req)
	if err != nil {
		return 0, err
	}
	if slots < 1 {
		slots = 1
	}
	return (mem + slots - 1) / slots, nil
}

// jobMemory converts a per-slot h_vmem value back into a job request.
func jobMemory(req string, slots int) (string, error) {
	mem, err := core.ParseMemory(req)
	if err != nil {
		return "", err
	}
	if slots < 1 {
		slots = 1
	}
	return strconv.Itoa(mem*slots) + "M", nil
}

func decodeGpusReq(req string) (gpus int, err error) {
	re := regexp.MustCompile("^[a-zA-Z0-9]+:")
	te := regexp.MustCompile("[0-9]+$")
	if match := te.FindString(req); len(match) > 0 {
		if numGpus, perr := strconv.ParseInt(match, 10, 64); perr == nil {
			if gpuType := re.FindString(req); len(gpuType) > 0 {
				err = errors.New("GPU type not supported")
				return
			}
			gpus = int(numGpus)
			return
		}
	}
	err = errors.New("Invalid gpu request")
	return
}
