// Package markdown converts post bodies to HTML.
//
// It wraps goldmark with the GFM table and strikethrough extensions and a
// custom image renderer that points local raster images at their transcoded
// WebP counterparts and marks every image for lazy loading.
package markdown
