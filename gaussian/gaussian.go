// Package gaussian reads and rewrites the Link 0 resource directives of
// Gaussian input files.
package gaussian

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"joblaunch.io/core"
)

// Extensions accepted for Gaussian inputs
var Extensions = []string{".com", ".gjf"}

const (
	DirectiveSigil = "%"
	LinkSeparator  = "--link1--"
)

// Directive keys, lower case
const (
	KeyNProcShared = "nprocshared"
	KeyNProc       = "nproc"
	KeyMem         = "mem"
	KeyChk         = "chk"
)

func managed(key string) bool {
	switch key {
	case KeyNProcShared, KeyNProc, KeyMem, KeyChk:
		return true
	}
	return false
}

// Directives maps lower-case directive names to their values.
type Directives map[string]string

func parseDirective(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, DirectiveSigil) {
		return "", "", false
	}
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[1:eq]))
	value = strings.TrimSpace(line[eq+1:])
	return key, value, len(key) > 0
}

func isLinkSeparator(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), LinkSeparator)
}

// Parse extracts %name=value directives. Names are case-insensitive and
// the first occurrence of a name wins.
func Parse(content []byte) Directives {
	d := Directives{}
	for _, line := range strings.Split(string(content), "\n") {
		if key, value, ok := parseDirective(line); ok {
			if _, seen := d[key]; !seen {
				d[key] = value
			}
		}
	}
	return d
}

// Cores returns %NProcShared, falling back to %NProc.
func (d Directives) Cores() int {
	for _, key := range []string{KeyNProcShared, KeyNProc} {
		if val, ok := d[key]; ok {
			if n, err := strconv.Atoi(val); err == nil {
				return n
			}
		}
	}
	return 0
}

// Resources returns the scheduler resources requested by the directives.
func (d Directives) Resources() core.Resources {
	return core.Resources{
		Cores:  d.Cores(),
		Memory: d[KeyMem],
	}
}

// Block is the canonical directive block written into an input.
type Block struct {
	Cores  int
	Memory string
	Chk    string
}

// Lines returns the block directives. Unset fields are left out.
func (b Block) Lines() []string {
	var lines []string
	if b.Cores > 0 {
		lines = append(lines, "%NProcShared="+strconv.Itoa(b.Cores))
	}
	if len(b.Memory) > 0 {
		lines = append(lines, "%Mem="+GaussianMemory(b.Memory))
	}
	if len(b.Chk) > 0 {
		lines = append(lines, "%Chk="+b.Chk)
	}
	return lines
}

// GaussianMemory spells a scheduler memory value the way Gaussian reads
// it: a bare K/M/G/T suffix gets a trailing B and a plain number is
// taken as MB.
func GaussianMemory(mem string) string {
	upper := strings.ToUpper(mem)
	switch {
	case strings.HasSuffix(upper, "B"), strings.HasSuffix(upper, "W"):
		return mem
	case strings.HasSuffix(upper, "K"), strings.HasSuffix(upper, "M"),
		strings.HasSuffix(upper, "G"), strings.HasSuffix(upper, "T"):
		return mem + "B"
	}
	return mem + "MB"
}

// Rewrite returns content with the managed directives (%NProcShared,
// %NProc, %Mem, %Chk) of the first link section removed and block
// inserted at the top and after every --Link1-- separator. Directives
// in later link sections are kept as they are. Inserted lines use the
// line terminator of content.
func Rewrite(content []byte, block Block) []byte {
	text := string(content)
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	trailing := strings.HasSuffix(text, eol)
	lines := strings.Split(strings.TrimSuffix(text, eol), eol)
	blockLines := block.Lines()

	out := append([]string{}, blockLines...)
	first := true
	for _, line := range lines {
		if isLinkSeparator(line) {
			out = append(out, line)
			out = append(out, blockLines...)
			first = false
			continue
		}
		if first {
			if key, _, ok := parseDirective(line); ok && managed(key) {
				continue
			}
		}
		out = append(out, line)
	}
	result := strings.Join(out, eol)
	if trailing {
		result += eol
	}
	return []byte(result)
}

// RewriteFile replaces the input at path with its rewritten content.
// The new content is written to a temporary sibling first and renamed
// over the original, so a failure leaves the input untouched.
func RewriteFile(fs afero.Fs, path string, block Block) error {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrap(err, "gaussian: cannot read "+path)
	}
	updated := Rewrite(content, block)
	if bytes.Equal(content, updated) {
		return nil
	}
	perm := os.FileMode(0644)
	if info, err := fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := core.WriteFileAtomic(fs, path, updated, perm); err != nil {
		return errors.Wrap(err, "gaussian: cannot rewrite "+path)
	}
	return nil
}
