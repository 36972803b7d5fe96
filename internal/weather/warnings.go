package weather

import "time"

// WarningCatalogue is the fixed set of warning types. Every group derived
// from it exists on every cycle, active or not, so consumers keep a stable
// identity even when the raw payload omits a type entirely.
var WarningCatalogue = []WarningType{
	"storm",
	"flood",
	"fire",
	"heat",
	"wind",
	"strong-wind",
	"thunderstorm",
	"frost",
	"rain",
	"snow",
	"hail",
	"cyclone",
	"tsunami",
	"fog",
	"generic",
}

// upstream classifications that differ from our catalogue names
var classificationAliases = map[string]WarningType{
	"hurricane": "cyclone",
	"cold-rain": "rain",
}

// NormalizeClassification maps an upstream warning classification onto the
// catalogue. Unrecognized classifications land in the generic group.
func NormalizeClassification(classification string) WarningType {
	if t, ok := classificationAliases[classification]; ok {
		return t
	}
	for _, t := range WarningCatalogue {
		if string(t) == classification {
			return t
		}
	}
	return "generic"
}

// GroupWarnings groups raw warnings by catalogue type. A member is active
// while its expiry lies after now; expired members are counted out entirely.
// Types with no active members yield an inactive group with no severity.
func GroupWarnings(warnings []Warning, now time.Time) []WarningGroup {
	byType := make(map[WarningType][]Warning)
	for _, w := range warnings {
		if !w.ExpiresAt.IsZero() && !w.ExpiresAt.After(now) {
			continue
		}
		byType[w.Type] = append(byType[w.Type], w)
	}

	groups := make([]WarningGroup, 0, len(WarningCatalogue))
	for _, t := range WarningCatalogue {
		members := byType[t]
		group := WarningGroup{
			Type:   t,
			Active: len(members) > 0,
			Count:  len(members),
		}
		if len(members) > 0 {
			group.Members = members
			max := members[0].Severity
			for _, m := range members[1:] {
				if m.Severity.Rank() > max.Rank() {
					max = m.Severity
				}
			}
			group.MaxSeverity = max
		}
		groups = append(groups, group)
	}
	return groups
}
