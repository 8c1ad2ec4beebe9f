package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/peter-hook/peter-hook/pkg/git"
)

// BaseCommand provides common functionality for all commands.
type BaseCommand struct {
	Name        string
	Description string
	Examples    []Example
	Notes       []string
}

// CommonOptions defines options shared across multiple commands.
type CommonOptions struct {
	Color   string `long:"color"   description:"Whether to use color in output" choice:"auto" default:"auto"`
	Help    bool   `long:"help"    description:"Show this help message"                                     short:"h"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"                                      short:"v"`
}

// GitRepositoryCommand provides common git repository discovery.
type GitRepositoryCommand struct {
	BaseCommand
}

// RequireGitRepository locates the enclosing repository or returns an
// actionable error.
func (grc *GitRepositoryCommand) RequireGitRepository() (*git.Repository, error) {
	repo, err := git.Locate("")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	return repo, nil
}

// ParseArgsWithHelp parses arguments and handles help display uniformly.
func (bc *BaseCommand) ParseArgsWithHelp(opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.Default)

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}

	return remaining, nil
}

// GenerateHelp creates standardized help output.
func (bc *BaseCommand) GenerateHelp(parser *flags.Parser) string {
	formatter := &HelpFormatter{
		Command:     bc.Name,
		Description: bc.Description,
		Examples:    bc.Examples,
		Notes:       bc.Notes,
	}
	return formatter.FormatHelp(parser)
}

// ConfigFileExists checks whether a configuration file exists at path.
func (bc *BaseCommand) ConfigFileExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}
	return nil
}
