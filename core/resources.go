package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Resources is a scheduler resource request. Zero values mean unset.
type Resources struct {
	Nodes    int    `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Cores    int    `yaml:"cores,omitempty" json:"cores,omitempty"`
	Memory   string `yaml:"memory,omitempty" json:"memory,omitempty"`
	Gpus     int    `yaml:"gpus,omitempty" json:"gpus,omitempty"`
	Queue    string `yaml:"queue,omitempty" json:"queue,omitempty"`
	Account  string `yaml:"account,omitempty" json:"account,omitempty"`
	NodeList string `yaml:"nodelist,omitempty" json:"nodelist,omitempty"`
}

// Or returns r with every unset field taken from fallback.
func (r Resources) Or(fallback Resources) Resources {
	if r.Nodes == 0 {
		r.Nodes = fallback.Nodes
	}
	if r.Cores == 0 {
		r.Cores = fallback.Cores
	}
	if len(r.Memory) == 0 {
		r.Memory = fallback.Memory
	}
	if r.Gpus == 0 {
		r.Gpus = fallback.Gpus
	}
	if len(r.Queue) == 0 {
		r.Queue = fallback.Queue
	}
	if len(r.Account) == 0 {
		r.Account = fallback.Account
	}
	if len(r.NodeList) == 0 {
		r.NodeList = fallback.NodeList
	}
	return r
}

// Slots is the total number of cores over all nodes.
func (r Resources) Slots() int {
	nodes := r.Nodes
	if nodes < 1 {
		nodes = 1
	}
	cores := r.Cores
	if cores < 1 {
		cores = 1
	}
	return nodes * cores
}

var (
	memNumber = regexp.MustCompile("^[0-9]+")
	memSuffix = regexp.MustCompile("(?i)^[KMGT]B?$")
)

// ParseMemory decodes a memory request such as 2000MB, 4G or 16gb into
// megabytes. A bare number is taken as megabytes.
func ParseMemory(req string) (mem int, err error) {
	req = strings.TrimSpace(req)
	match := memNumber.FindString(req)
	if len(match) == 0 {
		err = errors.New("invalid memory request: " + req)
		return
	}
	rest := req[len(match):]
	if len(rest) > 0 && !memSuffix.MatchString(rest) {
		err = errors.New("invalid memory request: " + req)
		return
	}
	base, perr := strconv.ParseInt(match, 10, 64)
	if perr != nil {
		err = errors.New("invalid memory request: " + req)
		return
	}
	mag := "M"
	if len(rest) > 0 {
		mag = strings.ToUpper(rest[:1])
	}
	switch mag {
	case "K":
		mem = int(math.Ceil(float64(base) / 1024))
	case "M":
		mem = int(base)
	case "G":
		mem = int(base) * 1024
	case "T":
		mem = int(base) * 1024 * 1024
	}
	return
}
