// Package csp builds Content-Security-Policy header values.
package csp

import (
	"sort"
	"strings"
)

// Header names.
const (
	HeaderEnforce    = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// directiveOrder fixes the output order so policies are stable and diffable.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Builder assembles a policy with a fluent interface.
//
//	policy := csp.NewBuilder().
//	    DefaultSrc("'self'").
//	    ImgSrc("'self'", "data:").
//	    Build()
//	// "default-src 'self'; img-src 'self' data:"
//
// A Builder is not safe for concurrent mutation; build the policy once at
// startup and share the resulting string.
type Builder struct {
	directives map[string][]string
	reportOnly bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

// Directive sets an arbitrary directive, replacing previous sources.
func (b *Builder) Directive(name string, sources ...string) *Builder {
	b.directives[name] = sources
	return b
}

func (b *Builder) DefaultSrc(sources ...string) *Builder { return b.Directive("default-src", sources...) }
func (b *Builder) ScriptSrc(sources ...string) *Builder  { return b.Directive("script-src", sources...) }
func (b *Builder) StyleSrc(sources ...string) *Builder   { return b.Directive("style-src", sources...) }
func (b *Builder) ImgSrc(sources ...string) *Builder     { return b.Directive("img-src", sources...) }
func (b *Builder) FontSrc(sources ...string) *Builder    { return b.Directive("font-src", sources...) }
func (b *Builder) ConnectSrc(sources ...string) *Builder { return b.Directive("connect-src", sources...) }
func (b *Builder) FormAction(sources ...string) *Builder { return b.Directive("form-action", sources...) }
func (b *Builder) BaseURI(sources ...string) *Builder    { return b.Directive("base-uri", sources...) }
func (b *Builder) ObjectSrc(sources ...string) *Builder  { return b.Directive("object-src", sources...) }

// FrameAncestors controls who may embed responses; "'none'" prevents
// clickjacking.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.Directive("frame-ancestors", sources...)
}

// ReportURI sets where browsers send violation reports.
func (b *Builder) ReportURI(uri string) *Builder {
	if uri == "" {
		delete(b.directives, "report-uri")
		return b
	}
	return b.Directive("report-uri", uri)
}

// ReportOnly switches the policy to report-only mode.
func (b *Builder) ReportOnly(enabled bool) *Builder {
	b.reportOnly = enabled
	return b
}

// Build renders the policy. Directives outside the known set are appended
// in name order after the known ones. Empty directives are skipped.
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.directives))
	seen := make(map[string]bool, len(directiveOrder))
	for _, name := range directiveOrder {
		seen[name] = true
		if sources := b.directives[name]; len(sources) > 0 {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		}
	}

	var extra []string
	for name := range b.directives {
		if !seen[name] && len(b.directives[name]) > 0 {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		parts = append(parts, name+" "+strings.Join(b.directives[name], " "))
	}

	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy must be sent under.
func (b *Builder) HeaderName() string {
	if b.reportOnly {
		return HeaderReportOnly
	}
	return HeaderEnforce
}

// APIPolicy is the policy for JSON endpoints: nothing may load, nothing may
// frame the response.
func APIPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		BaseURI("'none'").
		FormAction("'none'")
}

// SwaggerUIPolicy allows what the bundled Swagger UI needs: inline scripts and
// styles, data: images and same-origin spec fetches.
func SwaggerUIPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'self'").
		ScriptSrc("'self'", "'unsafe-inline'").
		StyleSrc("'self'", "'unsafe-inline'").
		ImgSrc("'self'", "data:").
		FontSrc("'self'", "data:").
		ConnectSrc("'self'").
		FrameAncestors("'none'").
		BaseURI("'self'").
		FormAction("'self'").
		ObjectSrc("'none'")
}
