// Package publish commits a built site into a branch of a git repository and
// optionally pushes it, in the style of GitHub Pages deployments.
//
// The branch is treated as a pure deploy target: every publish replaces the
// whole tree with the contents of the output directory.
package publish
