package site

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// stagingPath is the sibling directory a build writes into before promotion.
func stagingPath(output string) string { return output + "_stage" }

// beginStaging creates a fresh staging directory next to the output directory.
// Leftovers of an interrupted build are removed first.
func (g *Generator) beginStaging() error {
	stage := stagingPath(g.outputDir)
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("remove stale staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil { //nolint:gosec // published site must be world-readable
		return err
	}
	g.stageDir = stage
	g.logger.Debug("Initialized staging directory", "staging", stage, "final", g.outputDir)
	return nil
}

// finalizeStaging promotes the staging directory to the output location.
// Strategy:
//  1. Move the existing output (if any) to <output>.prev.
//  2. Rename staging -> output.
//  3. Remove the backup.
func (g *Generator) finalizeStaging() error {
	if g.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(g.stageDir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}

	prev := g.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		g.logger.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	if _, err := os.Stat(g.outputDir); err == nil {
		if err := os.Rename(g.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(g.stageDir, g.outputDir); err != nil {
		// Put the previous output back so a failed promotion changes nothing.
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, g.outputDir)
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	g.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		g.logger.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	g.logger.Debug("Promoted staging directory", "output", g.outputDir)
	return nil
}

// abortStaging removes the staging directory after a failed build to avoid orphaned temp dirs.
func (g *Generator) abortStaging() {
	if g.stageDir == "" {
		return
	}
	dir := g.stageDir
	g.stageDir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		g.logger.Warn("Failed to remove staging directory after abort", "staging", dir, logfields.Error(err))
	} else {
		g.logger.Debug("Removed staging directory after abort", "staging", dir)
	}
}
