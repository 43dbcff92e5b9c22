package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	LOG_ENABLE                 = "JOBLAUNCH_LOGLEVEL"
	LOG_PATH                   = "JOBLAUNCH_LOGPATH"
	LOG_TIMEOUT                = "JOBLAUNCH_LOGTIMEOUT"
	LOG_FILENAME               = "joblaunch.log"
	LOG_DEFAULT_TIMEOUT        = 24
	JOBLAUNCH_DEBUG_LOGGING    = 10
	JOBLAUNCH_INFO_LOGGING     = 20
	JOBLAUNCH_WARNING_LOGGING  = 30
	JOBLAUNCH_ERROR_LOGGING    = 40
	JOBLAUNCH_CRITICAL_LOGGING = 50
)

var (
	Log *logrus.Logger
)

func init() {
	logPath := os.TempDir()
	if env := os.Getenv(LOG_PATH); len(env) > 0 {
		logPath = env
	}
	timeout := LOG_DEFAULT_TIMEOUT
	if env := os.Getenv(LOG_TIMEOUT); len(env) > 0 {
		if t, err := strconv.Atoi(env); err == nil {
			timeout = t
		}
	}
	Log = logrus.New()
	Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    !isatty.IsTerminal(os.Stderr.Fd()),
		DisableTimestamp: true,
	})
	var wrt io.Writer = os.Stderr
	if f := openLogFile(filepath.Join(logPath, LOG_FILENAME), timeout); f != nil {
		wrt = io.MultiWriter(os.Stderr, f)
	}
	Log.SetOutput(wrt)
}

// openLogFile opens the shared log file, removing it first when its
// timestamp tag is older than timeout hours. The first line of the file
// is always the RFC3339 time it was created.
func openLogFile(logfile string, timeout int) *os.File {
	if f, err := os.Open(logfile); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Scan()
		f.Close()
		if tag, terr := time.Parse(time.RFC3339, scanner.Text()); terr == nil {
			if int(time.Since(tag).Hours()) > timeout {
				os.Remove(logfile)
			}
		} else {
			os.Remove(logfile)
		}
	}
	f, err := os.OpenFile(logfile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger cannot open file: %v\n",
			fmt.Errorf("LogWriter: OpenFile: %w", err))
		return nil
	}
	if stat, serr := f.Stat(); serr == nil {
		if stat.Size() == 0 {
			f.WriteString(time.Now().Format(time.RFC3339) + "\n")
			f.Sync()
		}
	}
	return f
}

func LogLevel() int {
	if env, err := strconv.Atoi(os.Getenv(LOG_ENABLE)); err == nil {
		return env
	} else {
		return JOBLAUNCH_WARNING_LOGGING
	}
}

func getLogLevel(level int) string {
	switch level := level; level {
	case JOBLAUNCH_DEBUG_LOGGING:
		return "DEBUG"
	case JOBLAUNCH_INFO_LOGGING:
		return "INFO"
	case JOBLAUNCH_WARNING_LOGGING:
		return "WARNING"
	case JOBLAUNCH_ERROR_LOGGING:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func entry(level int) *logrus.Entry {
	return Log.WithField("severity", getLogLevel(level))
}

func logObj(level int, name string, v interface{}) {
	if LogLevel() <= level {
		data, _ := json.MarshalIndent(v, "", " ")
		msg := fmt.Sprintf("%s:\n%s", name, data)
		switch {
		case level <= JOBLAUNCH_DEBUG_LOGGING:
			entry(level).Debug(msg)
		case level <= JOBLAUNCH_INFO_LOGGING:
			entry(level).Info(msg)
		case level <= JOBLAUNCH_WARNING_LOGGING:
			entry(level).Warn(msg)
		default:
			entry(level).Error(msg)
		}
	}
}

func DebugObj(name string, v interface{}) {
	logObj(JOBLAUNCH_DEBUG_LOGGING, name, v)
}

func DebugPrintf(format string, a ...interface{}) {
	level := JOBLAUNCH_DEBUG_LOGGING
	if LogLevel() <= level {
		entry(level).Debugf(format, a...)
	}
}

func InfoObj(name string, v interface{}) {
	logObj(JOBLAUNCH_INFO_LOGGING, name, v)
}

func InfoPrintf(format string, a ...interface{}) {
	level := JOBLAUNCH_INFO_LOGGING
	if LogLevel() <= level {
		entry(level).Infof(format, a...)
	}
}

func WarningObj(name string, v interface{}) {
	logObj(JOBLAUNCH_WARNING_LOGGING, name, v)
}

func WarningPrintf(format string, a ...interface{}) {
	level := JOBLAUNCH_WARNING_LOGGING
	if LogLevel() <= level {
		entry(level).Warnf(format, a...)
	}
}

func ErrorObj(name string, v interface{}) {
	logObj(JOBLAUNCH_ERROR_LOGGING, name, v)
}

func ErrorPrintf(format string, a ...interface{}) {
	level := JOBLAUNCH_ERROR_LOGGING
	if LogLevel() <= level {
		entry(level).Errorf(format, a...)
	}
}

func CriticalObj(name string, v interface{}) {
	logObj(JOBLAUNCH_CRITICAL_LOGGING, name, v)
}

func CriticalPrintf(format string, a ...interface{}) {
	level := JOBLAUNCH_CRITICAL_LOGGING
	if LogLevel() <= level {
		entry(level).Errorf(format, a...)
	}
}
