package validator

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/erraggy/swaggen/internal/stringutil"
	"github.com/erraggy/swaggen/resolver"
)

// validateInfo checks the merged info header, the agreement of every info
// block, and the declared version constraint.
func (v *validator) validateInfo() {
	info := v.spec.Info
	if info == nil {
		v.addError("info", "specification has no info")
		return
	}
	src := v.infoSource()

	if strings.TrimSpace(v.version) == "" {
		v.addError("info.version", "run version is empty", withField("version"))
	}
	v.validateVersion(info.Version, src)

	if info.Contact != nil {
		if info.Contact.URL != "" && !stringutil.IsValidURL(info.Contact.URL) {
			v.addError("info.contact.url", fmt.Sprintf("invalid URL: %s", info.Contact.URL),
				withField("url"), withValue(info.Contact.URL), src)
		}
		if info.Contact.Email != "" && !stringutil.IsValidEmail(info.Contact.Email) {
			v.addError("info.contact.email", fmt.Sprintf("invalid email: %s", info.Contact.Email),
				withField("email"), withValue(info.Contact.Email), src)
		}
	}
	if info.License != nil {
		if info.License.Name == "" {
			v.addError("info.license.name", "license name is required", withField("name"), src)
		}
		if info.License.URL != "" && !stringutil.IsValidURL(info.License.URL) {
			v.addError("info.license.url", fmt.Sprintf("invalid URL: %s", info.License.URL),
				withField("url"), withValue(info.License.URL), src)
		}
	}
	if info.TermsOfService != "" && !stringutil.IsValidURL(info.TermsOfService) {
		v.addError("info.termsOfService", fmt.Sprintf("invalid URL: %s", info.TermsOfService),
			withField("termsOfService"), withValue(info.TermsOfService), src)
	}
	if info.Description == "" {
		v.addWarning("info.description", "specification has no description", withField("description"), src)
	}

	v.validateInfoConflicts()
}

// infoSource attributes info issues to the first info block, if any.
func (v *validator) infoSource() func(*Issue) {
	if len(v.spec.InfoSources) == 0 {
		return func(*Issue) {}
	}
	first := v.spec.InfoSources[0]
	return withSource(first.Document, first.Location)
}

// validateVersion checks the declared version constraint against the run
// version. Semantic versions are compatible when they share the major version
// and the run version is not older. Anything else must match exactly.
func (v *validator) validateVersion(declared string, src func(*Issue)) {
	declared = strings.TrimSpace(declared)
	run := strings.TrimSpace(v.version)
	if declared == "" || run == "" {
		return
	}

	want, have := canonical(declared), canonical(run)
	if !semver.IsValid(have) {
		v.addWarning("info.version",
			fmt.Sprintf("run version %q is not a semantic version; declared version %q was not checked", run, declared),
			withField("version"), withValue(run), src)
		return
	}
	if !semver.IsValid(want) {
		if declared != run {
			v.addError("info.version",
				fmt.Sprintf("declared version %q does not match run version %q", declared, run),
				withField("version"), withValue(declared), src)
		}
		return
	}
	if semver.Major(want) != semver.Major(have) {
		v.addError("info.version",
			fmt.Sprintf("run version %q has a different major version than declared version %q", run, declared),
			withField("version"), withValue(declared), src)
		return
	}
	if semver.Compare(have, want) < 0 {
		v.addError("info.version",
			fmt.Sprintf("run version %q is older than declared version %q", run, declared),
			withField("version"), withValue(declared), src)
	}
}

// canonical adds the "v" prefix semver expects.
func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// validateInfoConflicts reports fields that two info blocks set to
// different values. Title and version conflicts are errors; the merged
// header keeps the first value either way.
func (v *validator) validateInfoConflicts() {
	type field struct {
		name  string
		value func(src resolver.InfoSource) string
		fatal bool
	}
	fields := []field{
		{"title", func(s resolver.InfoSource) string { return s.Info.Title }, true},
		{"version", func(s resolver.InfoSource) string { return s.Info.Version }, true},
		{"description", func(s resolver.InfoSource) string { return s.Info.Description }, false},
		{"termsOfService", func(s resolver.InfoSource) string { return s.Info.TermsOfService }, false},
	}
	for _, f := range fields {
		var first *resolver.InfoSource
		for i := range v.spec.InfoSources {
			src := v.spec.InfoSources[i]
			value := f.value(src)
			if value == "" {
				continue
			}
			if first == nil {
				first = &v.spec.InfoSources[i]
				continue
			}
			if prev := f.value(*first); value != prev {
				msg := fmt.Sprintf("%s %q conflicts with %q declared in %s", f.name, value, prev, first.Document)
				opts := []func(*Issue){withField(f.name), withValue(value), withSource(src.Document, src.Location)}
				if f.fatal {
					v.addError("info."+f.name, msg, opts...)
				} else {
					v.addWarning("info."+f.name, msg, opts...)
				}
			}
		}
	}
}
