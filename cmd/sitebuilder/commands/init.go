package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration and scaffold files"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.Root, i.Force)
}

func RunInit(dir string, force bool) error {
	// Provide friendly user-facing messages on stdout.
	fmt.Println("Initializing sitebuilder site")
	fmt.Printf("Writing site skeleton to %s\n", dir)
	if err := config.Init(dir, force); err != nil {
		fmt.Println("Initialization failed")
		return errors.ConfigError("failed to initialize site").WithCause(err).
			WithContext("path", dir).
			Build()
	}
	fmt.Println("initialized successfully")
	return nil
}
