package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Output  string `short:"o" help:"Output directory to publish (default <root>/_site)" type:"path"`
	Build   bool   `name:"build" default:"true" negatable:"" help:"Build the site before publishing"`
	NoPush  bool   `name:"no-push" help:"Commit without pushing (overrides publish.push)"`
	Message string `short:"m" name:"message" help:"Commit message (overrides publish.message)"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	logger := loggerOf(g)
	cfg, paths, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidatePublish(); err != nil {
		return err
	}
	paths = paths.WithOverrides("", p.Output)

	ctx, cancel := signalContext()
	defer cancel()

	if p.Build {
		if _, err := RunBuild(ctx, cfg, paths, BuildOptions{Logger: logger, Out: os.Stdout}); err != nil {
			return err
		}
	}

	pubCfg := cfg.Publish
	pubCfg.CheckoutDir = resolvePath(paths.Root, pubCfg.CheckoutDir)
	if p.NoPush {
		push := false
		pubCfg.Push = &push
	}
	if p.Message != "" {
		pubCfg.Message = p.Message
	}

	res, err := publish.New(pubCfg).WithLogger(logger).Publish(ctx, paths.Output)
	if err != nil {
		return err
	}
	switch {
	case !res.Changed && !res.Pushed:
		fmt.Printf("Branch %s already up to date\n", res.Branch)
	case res.Pushed:
		fmt.Printf("Published %d change(s) to %s (%s)\n", res.Files, res.Branch, shortHash(res.Commit))
	default:
		fmt.Printf("Committed %d change(s) to %s (%s), not pushed\n", res.Files, res.Branch, shortHash(res.Commit))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
