package checks

import (
	"regexp"
	"strings"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
)

// partRule adapts a function over the part document to a Checker.
type partRule struct {
	name string
	part *fzp.Part
	rule func(*fzp.Part, *Findings)
}

func (c partRule) Check(r *report.Report) report.Result {
	f := NewFindings(c.name, r)
	c.rule(c.part, f)
	return f.Result()
}

// partEntry registers a rule that only needs the parsed part document.
func partEntry(name, description string, rule func(*fzp.Part, *Findings)) MetadataEntry {
	return MetadataEntry{
		Descriptor: Descriptor{Name: name, Description: description},
		New: func(p *fzp.Part, _ *Source) Checker {
			return partRule{name: name, part: p, rule: rule}
		},
	}
}

var (
	missingTagsEntry = partEntry("missing_tags",
		"Check for missing required tags in the FZP file", checkMissingTags)
	requiredTagsEntry = partEntry("required_tags",
		"Check all required tags and attributes are present", checkRequiredTags)
	titleEntry = partEntry("title",
		"Check title tag is present", checkTitle)
	descriptionEntry = partEntry("description",
		"Check description tag is present", checkDescription)
	authorEntry = partEntry("author",
		"Check author tag is present", checkAuthor)
	viewsEntry = partEntry("views",
		"Check views section is present", checkViews)
	fritzingVersionEntry = partEntry("fritzing_version",
		"Check fritzing version attribute is present and valid", checkFritzingVersion)
	versionEntry = partEntry("version",
		"Check version tag is present and valid", checkVersion)
	moduleIDEntry = partEntry("module_id",
		"Check module ID attribute is present", checkModuleID)
	moduleIDSpecialCharsEntry = partEntry("module_id_special_chars",
		"Check module ID for special characters that may cause issues", checkModuleIDSpecialChars)
)

var (
	fritzingVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+.*$`)
	versionPattern         = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

func checkMissingTags(p *fzp.Part, f *Findings) {
	for _, tag := range []string{"module", "version", "author", "title", "label", "date", "description", "views", "connectors"} {
		if !p.Has(tag) {
			f.Errorf("Missing required tag: %s", tag)
		}
	}
}

func checkRequiredTags(p *fzp.Part, f *Findings) {
	if modules := p.FindAll("module"); len(modules) > 0 && fzp.Attr(modules[0], "moduleId") == "" {
		f.Errorf("Tag 'module' is missing required attribute 'moduleId'.")
	}
	for _, tag := range []string{"title", "tags", "properties", "views", "connectors"} {
		if !p.Has(tag) {
			f.Errorf("Required tag '%s' is missing.", tag)
		}
	}
}

func checkTitle(p *fzp.Part, f *Findings) {
	if !p.Has("title") {
		f.Errorf("'Title' is undefined or empty.")
	}
}

func checkDescription(p *fzp.Part, f *Findings) {
	if !p.Has("description") {
		f.Warnf("'Description' is undefined.")
	}
}

func checkAuthor(p *fzp.Part, f *Findings) {
	if !p.Has("author") {
		f.Warnf("'Author' is undefined.")
	}
}

func checkViews(p *fzp.Part, f *Findings) {
	sections := p.FindAll("views")
	if len(sections) == 0 {
		f.Errorf("'views' section is missing.")
		return
	}
	for _, view := range []string{fzp.BreadboardView, fzp.PCBView, fzp.SchematicView} {
		if len(fzp.Descendants(sections[0], view, false)) == 0 {
			f.Errorf("Required view '%s' is missing.", view)
		}
	}
}

func checkFritzingVersion(p *fzp.Part, f *Findings) {
	version := p.FritzingVersion()
	if version == "" {
		f.Errorf("'FritzingVersion' is undefined or empty.")
		return
	}
	if !fritzingVersionPattern.MatchString(strings.TrimSpace(version)) {
		f.Errorf("'FritzingVersion' '%s' should be in semantic versioning format (https://semver.org/).", version)
	}
}

func checkVersion(p *fzp.Part, f *Findings) {
	elements := p.FindAll("version")
	if len(elements) == 0 {
		f.Warnf("'Version' is undefined.")
		return
	}
	version := strings.TrimSpace(elements[0].Text())
	if !versionPattern.MatchString(version) {
		f.Warnf("'Version' '%s' does not match the expected format.", version)
	}
}

func checkModuleID(p *fzp.Part, f *Findings) {
	if p.ModuleID() == "" {
		f.Errorf("'ModuleID' is undefined or empty.")
	}
}

func checkModuleIDSpecialChars(p *fzp.Part, f *Findings) {
	id := p.ModuleID()
	for _, c := range []string{"*", "?", ",", "/"} {
		if strings.Contains(id, c) {
			f.Warnf("ModuleID contains special character '%s' which may cause issues", c)
		}
	}
}
