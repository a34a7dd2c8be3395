package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/nknorg/powledger/config"
)

const (
	callDepth = 3
	mb        = 1024 * 1024

	rotateCheckInterval = 10 * time.Second
	logFlags            = log.Ldate | log.Lmicroseconds
)

const (
	Red    = "0;31"
	Green  = "0;32"
	Yellow = "0;33"
	Pink   = "1;35"
)

const (
	DebugLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	maxLevel
)

var (
	levels = map[int]string{
		DebugLevel: Color(Pink, "[DEBUG]"),
		InfoLevel:  Color(Green, "[INFO ]"),
		WarnLevel:  Color(Yellow, "[WARN ]"),
		ErrorLevel: Color(Red, "[ERROR]"),
	}
	Stdout = os.Stdout
)

// Log and WebLog are usable before Init: they write to stdout and discard
// respectively, at info level.
var (
	Log      = newLogger(Stdout, InfoLevel, nil)
	WebLog   = newLogger(io.Discard, InfoLevel, nil)
	initOnce sync.Once
)

func Color(code, msg string) string {
	return fmt.Sprintf("\033[%sm%s\033[m", code, msg)
}

func GetGID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

func LevelName(level int) string {
	if name, ok := levels[level]; ok {
		return name
	}
	return "LEVEL" + strconv.Itoa(level)
}

type Logger struct {
	sync.RWMutex
	level   int
	logger  *log.Logger
	logFile *os.File
}

func newLogger(out io.Writer, level int, file *os.File) *Logger {
	return &Logger{
		level:   level,
		logger:  log.New(out, "", logFlags),
		logFile: file,
	}
}

func (l *Logger) reset(out io.Writer, level int, file *os.File) {
	l.Lock()
	defer l.Unlock()
	l.closeLogFile()
	l.level = level
	l.logger = log.New(out, "", logFlags)
	l.logFile = file
}

func (l *Logger) SetLevel(level int) error {
	if level >= maxLevel || level < 0 {
		return errors.New("invalid log level")
	}

	l.Lock()
	defer l.Unlock()

	l.level = level
	return nil
}

func (l *Logger) Level() int {
	l.RLock()
	defer l.RUnlock()
	return l.level
}

func (l *Logger) output(level int, msg string) error {
	l.RLock()
	defer l.RUnlock()

	if level < l.level {
		return nil
	}
	return l.logger.Output(callDepth, LevelName(level)+" GID "+strconv.FormatUint(GetGID(), 10)+", "+msg)
}

func (l *Logger) Debug(a ...interface{}) {
	l.output(DebugLevel, fmt.Sprintln(a...))
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.output(DebugLevel, fmt.Sprintf(format+"\n", a...))
}

func (l *Logger) Info(a ...interface{}) {
	l.output(InfoLevel, fmt.Sprintln(a...))
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.output(InfoLevel, fmt.Sprintf(format+"\n", a...))
}

func (l *Logger) Warning(a ...interface{}) {
	l.output(WarnLevel, fmt.Sprintln(a...))
}

func (l *Logger) Warningf(format string, a ...interface{}) {
	l.output(WarnLevel, fmt.Sprintf(format+"\n", a...))
}

func (l *Logger) Error(a ...interface{}) {
	l.output(ErrorLevel, fmt.Sprintln(a...))
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.output(ErrorLevel, fmt.Sprintf(format+"\n", a...))
}

func Debug(a ...interface{}) {
	Log.Debug(a...)
}

func Debugf(format string, a ...interface{}) {
	Log.Debugf(format, a...)
}

func Info(a ...interface{}) {
	Log.Info(a...)
}

func Infof(format string, a ...interface{}) {
	Log.Infof(format, a...)
}

func Warning(a ...interface{}) {
	Log.Warning(a...)
}

func Warningf(format string, a ...interface{}) {
	Log.Warningf(format, a...)
}

func Error(a ...interface{}) {
	Log.Error(a...)
}

func Errorf(format string, a ...interface{}) {
	Log.Errorf(format, a...)
}

func FileOpen(path string, name string) (*os.File, error) {
	if fi, err := os.Stat(path); err == nil {
		if !fi.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
	} else {
		if err := os.MkdirAll(path, 0766); err != nil {
			return nil, err
		}
	}

	currenttime := time.Now().Format("2006-01-02_15.04.05.000")

	logfile, err := os.OpenFile(filepath.Join(path, currenttime+"_"+name+".log"), os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return logfile, nil
}

// getWriterAndFile opens a new log file under path (when path is not empty)
// and tees it with the extra writers. With neither, output is discarded.
func getWriterAndFile(name, path string, extra ...io.Writer) (io.Writer, *os.File, error) {
	writers := append([]io.Writer{}, extra...)
	var logFile *os.File
	if len(path) > 0 {
		var err error
		logFile, err = FileOpen(path, name)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file in %v failed: %v", path, err)
		}
		writers = append(writers, logFile)
	}
	if len(writers) == 0 {
		return io.Discard, nil, nil
	}
	return io.MultiWriter(writers...), logFile, nil
}

// Init points Log and WebLog at the configured level and log directory and
// starts rotating their files past MaxLogSize.
func Init() error {
	var err error
	initOnce.Do(func() {
		level := config.Parameters.LogLevel
		path := config.Parameters.LogPath

		var writer, webWriter io.Writer
		var file, webFile *os.File
		writer, file, err = getWriterAndFile("LOG", path, Stdout)
		if err != nil {
			return
		}
		webWriter, webFile, err = getWriterAndFile("WEBLOG", path)
		if err != nil {
			return
		}

		Log.reset(writer, level, file)
		WebLog.reset(webWriter, level, webFile)

		if len(path) == 0 {
			return
		}
		go func() {
			for {
				time.Sleep(rotateCheckInterval)
				if Log.needNewLogFile() {
					if w, f, err := getWriterAndFile("LOG", path, Stdout); err == nil {
						Log.reset(w, level, f)
					} else {
						Log.Errorf("rotate log file error: %v", err)
					}
				}
				if WebLog.needNewLogFile() {
					if w, f, err := getWriterAndFile("WEBLOG", path); err == nil {
						WebLog.reset(w, level, f)
					} else {
						Log.Errorf("rotate web log file error: %v", err)
					}
				}
			}
		}()
	})
	return err
}

func (l *Logger) GetLogFileSize() (int64, error) {
	l.RLock()
	defer l.RUnlock()

	if l.logFile == nil {
		return 0, errors.New("no log file")
	}
	f, e := l.logFile.Stat()
	if e != nil {
		return 0, e
	}
	return f.Size(), nil
}

func (l *Logger) needNewLogFile() bool {
	logFileSize, err := l.GetLogFileSize()
	if err != nil {
		return false
	}
	return logFileSize > int64(config.Parameters.MaxLogFileSize)*mb
}

func (l *Logger) closeLogFile() error {
	var err error
	if l.logFile != nil {
		err = l.logFile.Close()
	}
	return err
}
