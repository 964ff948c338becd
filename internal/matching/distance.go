package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// distanceFor computes the per-family contribution to the overall
// MatchReport distance (spec §4.1 "Distance"): Levenshtein between the
// expected and actual string for string-shaped families, a flat penalty
// for list/map/regex-shaped families. Ordering is "smaller is closer" only;
// absolute values are not a stable contract (spec §9 open questions).
func distanceFor(family, expected, actual string) uint64 {
	switch family {
	case "query_param", "header", "cookie", "form_urlencoded_tuple", "json_body", "custom":
		return 1
	default:
		if strings.HasPrefix(expected, "matches ") {
			return 1
		}
		return uint64(levenshtein.ComputeDistance(expected, actual))
	}
}
