// Package workspace manages the scratch directory used for publish checkouts.
//
// Ephemeral mode creates a uniquely named directory (e.g. sitebuilder-publish-20251214-122336-1234)
// that is removed again by Cleanup.
//
// Persistent mode uses a fixed directory (e.g. .publish) that survives between
// runs, so later publishes only fetch what changed.
package workspace
