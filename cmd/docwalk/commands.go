package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/burntcarrot/treepad/schema"
)

// Flags represents the command-line flags that are passed to docwalk.
type Flags struct {
	Schema   string
	Debug    bool
	ClientID string
	LogDir   string
	Moves    []string
	Insert   string
}

// session holds what every subcommand needs once the flags are parsed.
type session struct {
	flags    Flags
	logger   *logrus.Logger
	schema   *schema.Schema
	clientID uuid.UUID
}

func defaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".treepad")
}

// newRootCmd builds the docwalk command tree.
func newRootCmd() *cobra.Command {
	s := &session{logger: logrus.New()}

	rootCmd := &cobra.Command{
		Use:           "docwalk",
		Short:         "Locate and move carets in a treepad document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s.flags.Schema, "schema", "", "YAML file assigning group tags to track types")
	pf.BoolVar(&s.flags.Debug, "debug", false, "Enable debugging mode to show more verbose logs")
	pf.StringVar(&s.flags.ClientID, "client-id", "", "The client UUID stamped on emitted messages (random if empty)")
	pf.StringVar(&s.flags.LogDir, "log-dir", defaultLogDir(), "The directory the log files are written to")
	pf.StringSliceVar(&s.flags.Moves, "moves", nil, "Comma separated moves to apply: block, next, back, snap")
	pf.StringVar(&s.flags.Insert, "insert", "", "Text to insert at the reached position")

	caretCmd := &cobra.Command{
		Use:   "caret <doc.json>",
		Short: "Start from the caret embedded in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, args[0], "")
		},
	}

	cursorCmd := &cobra.Command{
		Use:   "cursor <doc.json> <cursor.json>",
		Short: "Start from an absolute cursor path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, args[0], args[1])
		},
	}

	rootCmd.AddCommand(caretCmd, cursorCmd)
	return rootCmd
}

// prepare resolves the schema and client ID from the parsed flags.
func (s *session) prepare() error {
	s.schema = schema.Default
	if s.flags.Schema != "" {
		sch, err := schema.Load(s.flags.Schema)
		if err != nil {
			return err
		}
		s.schema = sch
	}

	s.clientID = uuid.New()
	if s.flags.ClientID != "" {
		id, err := uuid.Parse(s.flags.ClientID)
		if err != nil {
			return fmt.Errorf("invalid client ID %q: %w", s.flags.ClientID, err)
		}
		s.clientID = id
	}

	if s.flags.Debug {
		s.logger.SetLevel(logrus.DebugLevel)
	}
	return nil
}
