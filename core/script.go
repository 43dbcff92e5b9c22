package core

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

const DefaultShell = "/bin/bash"

//go:embed templates/script.tmpl
var scriptTemplate string

var scriptTmpl = template.Must(template.New("script").Parse(scriptTemplate))

// Script is a generated submission script: scheduler directives, then
// module environment, then the body commands in order.
type Script struct {
	Shell  string
	Header []string
	Unload []string
	Load   []string
	Body   []string
}

// Render returns the script text. Output only depends on the script
// fields, so identical requests give byte-identical files.
func (s *Script) Render() ([]byte, error) {
	if len(s.Shell) == 0 {
		s.Shell = DefaultShell
	}
	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, s); err != nil {
		return nil, errors.Wrap(err, "render job script")
	}
	return []byte(strings.TrimRight(buf.String(), "\n") + "\n"), nil
}

// ShellQuote quotes s for a POSIX shell when it holds anything besides
// plain path characters.
func ShellQuote(s string) string {
	if len(s) == 0 {
		return "''"
	}
	if strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=+,@%", r)
}

// ShellJoin quotes and joins args with single spaces.
func ShellJoin(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = ShellQuote(arg)
	}
	return strings.Join(quoted, " ")
}
