package orca

import (
	"regexp"
	"strconv"

	"joblaunch.io/core"
)

// Extensions accepted for ORCA inputs
var Extensions = []string{".inp"}

var (
	nprocsRe  = regexp.MustCompile(`(?i)\bnprocs\s+(\d+)`)
	maxcoreRe = regexp.MustCompile(`(?mi)^\s*%maxcore\s+(\d+)`)
	palRe     = regexp.MustCompile(`(?mi)^\s*!.*\bPAL(\d+)\b`)
)

// Directives are the parallel settings of an ORCA input.
type Directives struct {
	// Nprocs from a %pal block or a !PALn keyword
	Nprocs int
	// Maxcore in MB per core
	Maxcore int
}

func firstInt(re *regexp.Regexp, content []byte) int {
	if m := re.FindSubmatch(content); m != nil {
		if n, err := strconv.Atoi(string(m[1])); err == nil {
			return n
		}
	}
	return 0
}

func Parse(content []byte) Directives {
	d := Directives{
		Nprocs:  firstInt(nprocsRe, content),
		Maxcore: firstInt(maxcoreRe, content),
	}
	if d.Nprocs == 0 {
		d.Nprocs = firstInt(palRe, content)
	}
	return d
}

// Resources returns the scheduler request of the input. ORCA's %maxcore
// is per core, so the memory request covers all processes.
func (d Directives) Resources() core.Resources {
	res := core.Resources{Cores: d.Nprocs}
	if d.Maxcore > 0 {
		procs := d.Nprocs
		if procs < 1 {
			procs = 1
		}
		res.Memory = strconv.Itoa(d.Maxcore*procs) + "MB"
	}
	return res
}
