// Package templates renders site pages through html/template.
//
// Each page template is compiled together with the shared files under
// layouts/ and partials/ so a page can extend a layout: the layout declares
// {{block "content" .}} and the page overrides it with {{define "content"}}.
// Shared files are addressed by their slash-separated path relative to the
// template root, for example {{template "layouts/base.html" .}}.
package templates
