package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"

	"github.com/burntcarrot/treepad/doc"
)

// ensureDirExists ensures that a directory exists, and if it isn't present, it tries to create a new one.
func ensureDirExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.MkdirAll(path, 0700)
}

// setupLogger initializes docwalk's logger (logrus) to write into dir.
func setupLogger(logger *logrus.Logger, dir string) (*os.File, *os.File, error) {
	if err := ensureDirExists(dir); err != nil {
		return nil, nil, err
	}

	// Open the log file and create if it does not exist.
	logFile, err := os.OpenFile(filepath.Join(dir, "treepad.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		return nil, nil, err
	}

	// Create a separate log file for verbose logs.
	debugLogFile, err := os.OpenFile(filepath.Join(dir, "treepad-debug.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: debugLogFile,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})

	return logFile, debugLogFile, nil
}

// closeLogFiles closes the log files created by setupLogger.
// closeLogFiles is meant to be used for defer calls.
func closeLogFiles(logFile, debugLogFile *os.File) {
	if err := logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log file: %s\n", err)
	}
	if err := debugLogFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close debug log file: %s\n", err)
	}
}

// readJSON decodes the JSON file at path into v.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// loadDoc reads and validates a document.
func loadDoc(path string) (doc.Doc, error) {
	var d doc.Doc
	if err := readJSON(path, &d); err != nil {
		return doc.Doc{}, err
	}
	if err := doc.ValidateDoc(d); err != nil {
		return doc.Doc{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// loadCursor reads a cursor path and validates it against d.
func loadCursor(path string, d doc.Doc) (doc.CurSpan, error) {
	var cur doc.CurSpan
	if err := readJSON(path, &cur); err != nil {
		return nil, err
	}
	if err := doc.ValidateCursor(d, cur); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cur, nil
}
