package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"joblaunch.io/logger"
)

// Dialect renders scheduler directives for a job request.
type Dialect interface {
	// Directives returns the header lines; output is the path receiving
	// the job's stdout and stderr.
	Directives(req *JobRequest, output string) []string
	SubmitCommand() string
}

// ScriptDirectives are the job settings a user script requests through
// its own scheduler directive lines.
type ScriptDirectives struct {
	Name      string
	Resources Resources
}

// ScriptParser is implemented by dialects that read their directives
// back from a user script.
type ScriptParser interface {
	ParseScript(r io.Reader) (ScriptDirectives, error)
}

// Runner runs a command in dir and returns its exit status. A command
// that cannot be started returns a non-nil error.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (int, error)
}

// ExecRunner runs commands with os/exec. The command's stdout is
// discarded.
type ExecRunner struct {
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 127, errors.Wrap(err, "cannot run "+name)
}

// Launcher turns job requests into job files and hands them to the
// scheduler.
type Launcher struct {
	Fs      afero.Fs
	Runner  Runner
	Config  *Config
	Dialect Dialect
	WorkDir string
	Out     io.Writer
}

// Prepare creates the messages and archive directories. Existing
// directories are fine.
func (l *Launcher) Prepare() error {
	for _, dir := range []string{l.Config.MessagesDir, l.Config.ArchiveDir} {
		if err := l.Fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "cannot create "+dir)
		}
	}
	return nil
}

// Abs resolves path against the working directory.
func (l *Launcher) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.WorkDir, path)
}

// Exists reports whether path names a regular file.
func (l *Launcher) Exists(path string) bool {
	return fileExist(l.Fs, l.Abs(path))
}

// IsDir reports whether path names a directory.
func (l *Launcher) IsDir(path string) bool {
	info, err := l.Fs.Stat(l.Abs(path))
	return err == nil && info.IsDir()
}

// Path is where the job file for name is written.
func (l *Launcher) Path(name string) string {
	return filepath.Join(l.WorkDir, name+".job")
}

// Input validates one positional input file and derives its job name.
func (l *Launcher) Input(path string, exts ...string) (string, error) {
	if len(exts) > 0 {
		if err := CheckExtension(path, exts...); err != nil {
			return "", err
		}
	}
	if !l.Exists(path) {
		return "", &MissingFileError{File: path}
	}
	name := JobName(path)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// NewScript builds the script for req: dialect header plus the module
// environment of req.Program.
func (l *Launcher) NewScript(req *JobRequest, body []string) *Script {
	output := filepath.Join(l.Config.MessagesDir, req.Name+".msg")
	prog := l.Config.Program(req.Program)
	return &Script{
		Shell:  DefaultShell,
		Header: l.Dialect.Directives(req, output),
		Unload: append([]string{}, prog.Unload...),
		Load:   append([]string{}, prog.Modules...),
		Body:   body,
	}
}

// Write renders script into the job file for req and returns its path.
func (l *Launcher) Write(req *JobRequest, script *Script) (string, error) {
	data, err := script.Render()
	if err != nil {
		return "", err
	}
	path := l.Path(req.Name)
	if err := WriteFileAtomic(l.Fs, path, data, 0644); err != nil {
		return "", errors.Wrap(err, "cannot write "+path)
	}
	logger.DebugPrintf("%s: wrote %s", req.Name, path)
	return path, nil
}

func (l *Launcher) submitArgs(path string) (string, []string) {
	fields := strings.Fields(l.Config.SubmitCmd(l.Dialect.SubmitCommand()))
	return fields[0], append(fields[1:], filepath.Base(path))
}

// Dispatch submits the job file at path, or only reports it in dry-run
// mode. After a submission the file is moved to the archive directory
// whatever the exit status was.
func (l *Launcher) Dispatch(ctx context.Context, req *JobRequest, path string) (int, error) {
	if req.Mode == ModeDryRun {
		fmt.Fprintf(l.Out, "%s %s written, not submitted\n", color.YellowString("dry run:"), path)
		return 0, nil
	}
	name, args := l.submitArgs(path)
	code, err := l.Runner.Run(ctx, l.WorkDir, name, args...)
	if err != nil {
		logger.ErrorPrintf("%s: %v", req.Name, err)
	}
	dst := filepath.Join(l.Config.ArchiveDir, filepath.Base(path))
	if merr := moveFile(l.Fs, path, dst); merr != nil {
		logger.ErrorPrintf("%s: cannot archive job file: %v", req.Name, merr)
	}
	if code == 0 {
		fmt.Fprintf(l.Out, "%s %s\n", color.GreenString("submitted:"), req.Name)
	} else {
		fmt.Fprintf(l.Out, "%s %s (status %d)\n", color.RedString("failed:"), req.Name, code)
	}
	return code, nil
}

// Launch runs the whole pipeline for one resolved request.
func (l *Launcher) Launch(ctx context.Context, req *JobRequest, script *Script) (int, error) {
	if err := ValidateName(req.Name); err != nil {
		return 0, err
	}
	logger.DebugObj("job request", req)
	path, err := l.Write(req, script)
	if err != nil {
		return 0, err
	}
	return l.Dispatch(ctx, req, path)
}

// Batch calls fn for every input. Per-file errors are logged and skip
// that input only. A non-zero status of the last submission is returned
// as an ExitError.
func Batch(inputs []string, fn func(input string) (int, error)) error {
	status := 0
	for _, input := range inputs {
		code, err := fn(input)
		if err != nil {
			if IsFileError(err) {
				logger.ErrorPrintf("%v, skipping", err)
				continue
			}
			return err
		}
		status = code
	}
	if status != 0 {
		return &ExitError{Code: status}
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling of filename and
// renames it into place.
func WriteFileAtomic(fs afero.Fs, filename string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(filename)
	if len(dir) == 0 {
		dir = "."
	}
	tmp, err := afero.TempFile(fs, dir, "."+base+".")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(name)
		return err
	}
	if err := fs.Chmod(name, perm); err != nil {
		fs.Remove(name)
		return err
	}
	if err := fs.Rename(name, filename); err != nil {
		fs.Remove(name)
		return err
	}
	return nil
}

// moveFile replaces dst with src, copying when a rename is not possible
// (different filesystems).
func moveFile(fs afero.Fs, src, dst string) error {
	if err := fs.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, dst, data, 0644); err != nil {
		return err
	}
	return fs.Remove(src)
}
