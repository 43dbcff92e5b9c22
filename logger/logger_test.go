package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out := Log.Out
	formatter := Log.Formatter
	Log.SetOutput(&buf)
	Log.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	t.Cleanup(func() {
		Log.SetOutput(out)
		Log.SetFormatter(formatter)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	t.Setenv(LOG_ENABLE, strconv.Itoa(JOBLAUNCH_WARNING_LOGGING))

	DebugPrintf("debug %d", 1)
	InfoPrintf("info %d", 2)
	WarningPrintf("warning %d", 3)
	ErrorPrintf("error %d", 4)

	got := buf.String()
	for _, hidden := range []string{"debug 1", "info 2"} {
		if strings.Contains(got, hidden) {
			t.Errorf("%q logged at warning level:\n%s", hidden, got)
		}
	}
	for _, shown := range []string{"warning 3", "severity=WARNING", "error 4", "severity=ERROR"} {
		if !strings.Contains(got, shown) {
			t.Errorf("%q missing from:\n%s", shown, got)
		}
	}
}

func TestDefaultLevel(t *testing.T) {
	t.Setenv(LOG_ENABLE, "")
	if got := LogLevel(); got != JOBLAUNCH_WARNING_LOGGING {
		t.Errorf("LogLevel() = %d, want %d", got, JOBLAUNCH_WARNING_LOGGING)
	}
	t.Setenv(LOG_ENABLE, "verbose")
	if got := LogLevel(); got != JOBLAUNCH_WARNING_LOGGING {
		t.Errorf("LogLevel() = %d, want %d", got, JOBLAUNCH_WARNING_LOGGING)
	}
}

func TestDebugObj(t *testing.T) {
	buf := captureLog(t)
	t.Setenv(LOG_ENABLE, strconv.Itoa(JOBLAUNCH_DEBUG_LOGGING))

	DebugObj("request", map[string]int{"cores": 4})
	got := buf.String()
	if !strings.Contains(got, "request:") || !strings.Contains(got, `\"cores\": 4`) {
		t.Errorf("unexpected object log:\n%s", got)
	}
}

func TestOpenLogFileRotation(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), LOG_FILENAME)
	old := time.Now().Add(-48*time.Hour).Format(time.RFC3339) + "\nstale entry\n"
	if err := os.WriteFile(logfile, []byte(old), 0644); err != nil {
		t.Fatal(err)
	}

	f := openLogFile(logfile, LOG_DEFAULT_TIMEOUT)
	if f == nil {
		t.Fatal("openLogFile returned nil")
	}
	f.Close()

	data, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale entry") {
		t.Errorf("expired log file kept:\n%s", data)
	}
	tag := strings.SplitN(string(data), "\n", 2)[0]
	if _, err := time.Parse(time.RFC3339, tag); err != nil {
		t.Errorf("first line %q is not a timestamp: %v", tag, err)
	}
}

func TestOpenLogFileKeepsRecent(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), LOG_FILENAME)
	recent := time.Now().Format(time.RFC3339) + "\nrecent entry\n"
	if err := os.WriteFile(logfile, []byte(recent), 0644); err != nil {
		t.Fatal(err)
	}

	f := openLogFile(logfile, LOG_DEFAULT_TIMEOUT)
	if f == nil {
		t.Fatal("openLogFile returned nil")
	}
	f.Close()

	data, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != recent {
		t.Errorf("recent log file changed:\n%s", data)
	}
}
