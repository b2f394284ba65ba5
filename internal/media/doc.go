// Package media materializes the site's media directory into the output tree.
//
// JPEG and PNG files are re-encoded as WebP; every other file is copied
// unchanged. Failures are isolated per file.
package media
