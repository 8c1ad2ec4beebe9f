package commands

import (
	"fmt"

	"github.com/mitchellh/cli"
)

const licenseText = `peter-hook is distributed under the MIT License.

Permission is hereby granted, free of charge, to any person obtaining a
copy of this software and associated documentation files, to deal in the
software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and sell copies
of the software.`

// LicenseCommand implements `peter-hook license`. Like version, it always
// succeeds, including while a deprecated legacy configuration blocks every
// other command.
type LicenseCommand struct {
	BaseCommand
}

// LicenseCommandFactory constructs the license command for the CLI
// registry.
func LicenseCommandFactory() (cli.Command, error) {
	return &LicenseCommand{
		BaseCommand{Name: "license", Description: "Print license information."},
	}, nil
}

func (c *LicenseCommand) Help() string     { return c.Description }
func (c *LicenseCommand) Synopsis() string { return c.Description }

func (c *LicenseCommand) Run([]string) int {
	fmt.Println(licenseText)
	return 0
}
