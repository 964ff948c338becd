// Package matching implements the Matcher Kernel: it evaluates a
// RequestRequirements value against a CapturedRequest and reports a match
// verdict, a distance usable for closest-match diagnostics, and a
// per-family mismatch trail. The approach generalizes the teacher's
// evaluateMapping/matchHeader/matchQueryParam family-by-family boolean
// checks from WireMock's five fixed attributes to the full predicate set,
// replacing its bitmask specificity score with an additive distance.
package matching

import (
	"fmt"

	"github.com/goodmock/goodmock/internal/types"
)

// Mismatch describes one failing family.
type Mismatch struct {
	Family   string `json:"family"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Report is the MatchReport of spec §4.1.
type Report struct {
	Matches    bool       `json:"matches"`
	Distance   uint64     `json:"distance"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Evaluate is the kernel's single entry point. It never returns an error:
// requirement regexes are precompiled at insertion time, and a body that
// cannot be decoded just makes its family report no-match.
func Evaluate(req *types.CapturedRequest, reqs *types.Requirements) Report {
	var rep Report
	rep.Matches = true

	check := func(family string, ok bool, expected, actual string) {
		if ok {
			return
		}
		rep.Matches = false
		rep.Distance += distanceFor(family, expected, actual)
		rep.Mismatches = append(rep.Mismatches, Mismatch{Family: family, Expected: expected, Actual: actual})
	}

	schemeOK, schemeExp, schemeAct := evalSchemeFamily(reqs.Scheme, req.Scheme)
	check("scheme", schemeOK, schemeExp, schemeAct)

	methodOK, methodExp, methodAct := evalMethodFamily(reqs.Method, req.Method)
	check("method", methodOK, methodExp, methodAct)

	hostOK, hostExp, hostAct := evalHostFamily(reqs.Host, req.Host)
	check("host", hostOK, hostExp, hostAct)

	portOK, portExp, portAct := evalPortFamily(reqs.Port, reqs.PortNot, req.Port)
	check("port", portOK, portExp, portAct)

	pathOK, pathExp, pathAct := evalStringFamily(reqs.Path, req.Path, false)
	check("path", pathOK, pathExp, pathAct)

	bodyText, _ := req.Text()
	bodyOK, bodyExp, bodyAct := evalStringFamily(reqs.Body, bodyText, false)
	check("body", bodyOK, bodyExp, bodyAct)

	qpOK, qpExp, qpAct := evalKeyedFamily(reqs.QueryParam, req.Query, false)
	check("query_param", qpOK, qpExp, qpAct)

	hdrOK, hdrExp, hdrAct := evalKeyedFamily(reqs.Header, req.Headers, true)
	check("header", hdrOK, hdrExp, hdrAct)

	cookieOK, cookieExp, cookieAct := evalKeyedFamily(reqs.Cookie, req.Cookies, false)
	check("cookie", cookieOK, cookieExp, cookieAct)

	if form, ok := req.Form(); ok || len(reqs.FormTuple.Eq)+len(reqs.FormTuple.Not)+len(reqs.FormTuple.Exists)+len(reqs.FormTuple.Missing)+len(reqs.FormTuple.Includes)+len(reqs.FormTuple.Excludes)+len(reqs.FormTuple.Matches)+len(reqs.FormTuple.Count) > 0 {
		ftOK, ftExp, ftAct := evalKeyedFamily(reqs.FormTuple, form, false)
		check("form_urlencoded_tuple", ftOK, ftExp, ftAct)
	}

	jsonOK, jsonExp, jsonAct := evalJSONFamily(reqs, req)
	check("json_body", jsonOK, jsonExp, jsonAct)

	for _, cm := range reqs.Custom {
		got := cm.Matcher.Matches(req)
		want := !cm.IsFalse
		check("custom", got == want, fmt.Sprintf("%v", want), fmt.Sprintf("%v", got))
	}

	return rep
}
