package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Println("sitebuilder " + version.String())
	return nil
}
