package util

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagInfo describes a DICOM tag whose exported value can be overridden.
type TagInfo struct {
	Name string
	Tag  tag.Tag
}

// overridableTags maps lowercase tag names to the tags an export accepts
// overrides for. Patient identity and geometry are always taken from the case.
var overridableTags = map[string]TagInfo{
	"institutionname":               {Name: "InstitutionName", Tag: tag.InstitutionName},
	"institutionaldepartmentname":   {Name: "InstitutionalDepartmentName", Tag: tag.InstitutionalDepartmentName},
	"referringphysicianname":        {Name: "ReferringPhysicianName", Tag: tag.ReferringPhysicianName},
	"operatorsname":                 {Name: "OperatorsName", Tag: tag.OperatorsName},
	"stationname":                   {Name: "StationName", Tag: tag.StationName},
	"accessionnumber":               {Name: "AccessionNumber", Tag: tag.AccessionNumber},
	"studydescription":              {Name: "StudyDescription", Tag: tag.StudyDescription},
	"seriesdescription":             {Name: "SeriesDescription", Tag: tag.SeriesDescription},
	"requestedproceduredescription": {Name: "RequestedProcedureDescription", Tag: tag.RequestedProcedureDescription},
	"manufacturer":                  {Name: "Manufacturer", Tag: tag.Manufacturer},
	"manufacturermodelname":         {Name: "ManufacturerModelName", Tag: tag.ManufacturerModelName},
}

// GetTagByName looks an overridable tag up, ignoring case. Unknown names get
// an error suggesting the closest known tag.
func GetTagByName(name string) (TagInfo, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if info, ok := overridableTags[normalized]; ok {
		return info, nil
	}

	if suggestion := closestTagName(normalized); suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}
	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// OverridableTagNames lists the canonical names accepted by ParseTagOverrides, sorted.
func OverridableTagNames() []string {
	names := make([]string, 0, len(overridableTags))
	for _, info := range overridableTags {
		names = append(names, info.Name)
	}
	sort.Strings(names)
	return names
}

// TagOverrides holds user supplied tag values keyed by canonical tag name.
type TagOverrides map[string]string

// ParseTagOverrides parses "Name=Value" pairs. Later pairs win.
func ParseTagOverrides(pairs []string) (TagOverrides, error) {
	out := make(TagOverrides, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid tag %q: expected Name=Value", p)
		}
		info, err := GetTagByName(name)
		if err != nil {
			return nil, err
		}
		out[info.Name] = strings.TrimSpace(value)
	}
	return out, nil
}

// Value returns the override for name, or fallback when none is set.
func (o TagOverrides) Value(name, fallback string) string {
	if v, ok := o[name]; ok {
		return v
	}
	return fallback
}

// closestTagName returns the canonical name nearest to input, or "" when
// nothing is within a few edits.
func closestTagName(input string) string {
	const maxDistance = 5
	best := maxDistance + 1
	var match string

	for key, info := range overridableTags {
		if d := levenshteinDistance(input, key); d < best || (d == best && info.Name < match) {
			best = d
			match = info.Name
		}
	}
	if best <= maxDistance {
		return match
	}
	return ""
}

// levenshteinDistance counts the single-character edits turning a into b.
func levenshteinDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
