package addon

import "regexp"

// Remote references use the syntax Url[#Branch][:Subpath]. Branch and
// subpath are split from the right, so neither may contain its own
// marker character.
var (
	remoteSchemePattern = regexp.MustCompile(`^[A-Za-z0-9+.-]+://.`)
	sourceRefPattern    = regexp.MustCompile(`^((?:[A-Za-z0-9+.-]+://)?.*?)(?:#([^#]*?))?(?::([^:]*))?$`)
)

// ParseSource splits one source reference string. Only references with
// a URL scheme are split; local paths pass through untouched in Raw.
func ParseSource(ref string) Source {
	src := Source{Raw: ref}
	if !remoteSchemePattern.MatchString(ref) {
		return src
	}
	groups := sourceRefPattern.FindStringSubmatch(ref)
	if groups == nil {
		src.URL = ref
		return src
	}
	src.URL = groups[1]
	src.Branch = groups[2]
	src.Subpath = groups[3]
	return src
}

// Remote reports whether the source must be cloned before packaging.
func (s Source) Remote() bool {
	return s.URL != ""
}

// Name is the label used for the source in diagnostics.
func (s Source) Name() string {
	return s.Raw
}
