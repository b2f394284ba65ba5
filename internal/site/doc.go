// Package site builds the static site.
//
// A Generator runs a fixed sequence of stages against a staging directory
// that sits next to the output directory:
//
//	prepare_output  -> fresh staging dir + .nojekyll marker
//	render_posts    -> one HTML page per Markdown post
//	sort_posts      -> published posts by date, newest first
//	render_index    -> index.html grouped by configured section
//	copy_theme      -> the configured theme file
//	transcode_media -> _media/ into media/, raster images as WebP
//
// Only when every stage finished without a fatal error is the staging
// directory promoted over the previous output; a failed build leaves the
// old output untouched.
package site
