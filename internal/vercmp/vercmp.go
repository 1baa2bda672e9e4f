// Package vercmp implements per-ecosystem version ordering and latest
// selection. Each comparator applies the hint filter first, then orders
// what remains under its own grammar; pre-releases are excluded from
// "latest" unless nothing stable exists.
package vercmp

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/git-pkgs/vers"
	goversion "github.com/hashicorp/go-version"
)

// ErrNoMatch is returned when no version satisfies the hint, or when
// nothing in the candidate set parses under the ecosystem's grammar.
var ErrNoMatch = errors.New("no matching version")

// filterHint keeps versions whose string representation ends with the
// hint. An empty hint keeps everything.
func filterHint(versions []string, hint string) []string {
	if hint == "" {
		return versions
	}
	var out []string
	for _, v := range versions {
		if strings.HasSuffix(v, hint) {
			out = append(out, v)
		}
	}
	return out
}

// Semver orders versions under strict semantic versioning. Used by
// npm-style ecosystems (npm, cargo, packagist, helm, terraform, golang).
type Semver struct{}

func (Semver) SelectLatest(versions []string, hint string) (string, error) {
	var stable, pre []*semver.Version
	for _, raw := range filterHint(versions, hint) {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if v.Prerelease() == "" {
			stable = append(stable, v)
		} else {
			pre = append(pre, v)
		}
	}

	pick := stable
	if len(pick) == 0 {
		pick = pre
	}
	if len(pick) == 0 {
		return "", ErrNoMatch
	}

	sort.Sort(semver.Collection(pick))
	return pick[len(pick)-1].Original(), nil
}

// PEP440 orders versions under PEP 440 (PyPI). Within one release
// number: dev < alpha < beta < rc < final < post.
type PEP440 struct{}

var pep440Re = regexp.MustCompile(
	`^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
		`(?:[._-]?(a|alpha|b|beta|c|rc|pre|preview)[._-]?(\d*))?` +
		`(?:[._-]?(?:post|rev|r)[._-]?(\d*))?` +
		`(?:[._-]?dev[._-]?(\d*))?$`)

type pep440Version struct {
	original string
	epoch    int
	release  []int
	preRank  int // dev-only=-4, a=-3, b=-2, rc=-1, final=0
	preNum   int
	post     int // -1 when absent
	dev      int // absent sorts after present at the same level
	hasDev   bool
}

func parsePEP440(raw string) (pep440Version, bool) {
	m := pep440Re.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return pep440Version{}, false
	}

	v := pep440Version{original: raw, post: -1}
	if m[1] != "" {
		v.epoch, _ = strconv.Atoi(m[1])
	}
	for _, seg := range strings.Split(m[2], ".") {
		n, _ := strconv.Atoi(seg)
		v.release = append(v.release, n)
	}
	if m[3] != "" {
		switch m[3] {
		case "a", "alpha":
			v.preRank = -3
		case "b", "beta":
			v.preRank = -2
		default: // c, rc, pre, preview
			v.preRank = -1
		}
		if m[4] != "" {
			v.preNum, _ = strconv.Atoi(m[4])
		}
	}
	if m[5] != "" || strings.Contains(strings.ToLower(raw), "post") {
		if m[5] != "" {
			v.post, _ = strconv.Atoi(m[5])
		} else {
			v.post = 0
		}
	}
	if m[6] != "" {
		v.dev, _ = strconv.Atoi(m[6])
		v.hasDev = true
	} else if strings.Contains(strings.ToLower(raw), "dev") {
		v.hasDev = true
	}
	if v.hasDev && v.preRank == 0 && v.post < 0 {
		v.preRank = -4
	}
	return v, true
}

func (v pep440Version) prerelease() bool {
	return v.preRank < 0 || v.hasDev
}

func pep440Compare(a, b pep440Version) int {
	if a.epoch != b.epoch {
		return a.epoch - b.epoch
	}
	for i := 0; i < len(a.release) || i < len(b.release); i++ {
		var sa, sb int
		if i < len(a.release) {
			sa = a.release[i]
		}
		if i < len(b.release) {
			sb = b.release[i]
		}
		if sa != sb {
			return sa - sb
		}
	}
	if a.preRank != b.preRank {
		return a.preRank - b.preRank
	}
	if a.preNum != b.preNum {
		return a.preNum - b.preNum
	}
	if a.post != b.post {
		return a.post - b.post
	}
	if a.hasDev != b.hasDev {
		if a.hasDev {
			return -1
		}
		return 1
	}
	return a.dev - b.dev
}

func (PEP440) SelectLatest(versions []string, hint string) (string, error) {
	var stable, pre []pep440Version
	for _, raw := range filterHint(versions, hint) {
		v, ok := parsePEP440(raw)
		if !ok {
			continue
		}
		if v.prerelease() {
			pre = append(pre, v)
		} else {
			stable = append(stable, v)
		}
	}

	pick := stable
	if len(pick) == 0 {
		pick = pre
	}
	if len(pick) == 0 {
		return "", ErrNoMatch
	}

	best := pick[0]
	for _, v := range pick[1:] {
		if pep440Compare(v, best) > 0 {
			best = v
		}
	}
	return best.original, nil
}

// Maven orders versions with numeric-aware segment comparison and the
// Maven qualifier ranking. SNAPSHOT versions are excluded unless the
// hint is "snapshot"; any other hint is the usual suffix filter.
type Maven struct{}

func (Maven) SelectLatest(versions []string, hint string) (string, error) {
	includeSnapshots := strings.EqualFold(hint, "snapshot")
	if includeSnapshots {
		hint = ""
	}

	var stable, pre []string
	for _, raw := range filterHint(versions, hint) {
		if isSnapshot(raw) && !includeSnapshots {
			continue
		}
		if mavenPrerelease(raw) {
			pre = append(pre, raw)
		} else {
			stable = append(stable, raw)
		}
	}

	pick := stable
	if len(pick) == 0 {
		pick = pre
	}
	if len(pick) == 0 {
		return "", ErrNoMatch
	}

	best := pick[0]
	for _, v := range pick[1:] {
		if mavenCompare(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

func isSnapshot(v string) bool {
	return strings.HasSuffix(strings.ToUpper(v), "-SNAPSHOT")
}

func splitMaven(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

// mavenTokenRank returns the ordering rank of one version token and its
// trailing number (for qualifiers like "rc2"). Numeric tokens rank above
// every qualifier; a missing token ranks as a release.
func mavenTokenRank(tok string) (rank, num int) {
	if tok == "" {
		return 6, 0
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return 8, n
	}
	lower := strings.ToLower(tok)
	qual := strings.TrimRight(lower, "0123456789")
	if tail := lower[len(qual):]; tail != "" {
		num, _ = strconv.Atoi(tail)
	}
	switch qual {
	case "alpha", "a":
		return 1, num
	case "beta", "b":
		return 2, num
	case "milestone", "m":
		return 3, num
	case "rc", "cr":
		return 4, num
	case "snapshot":
		return 5, num
	case "", "final", "ga", "release":
		return 6, num
	case "sp":
		return 7, num
	default:
		return 6, num
	}
}

func mavenPrerelease(v string) bool {
	for _, tok := range splitMaven(v) {
		if rank, _ := mavenTokenRank(tok); rank >= 1 && rank <= 4 {
			return true
		}
	}
	return false
}

func mavenCompare(a, b string) int {
	as, bs := splitMaven(a), splitMaven(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		var ta, tb string
		if i < len(as) {
			ta = as[i]
		}
		if i < len(bs) {
			tb = bs[i]
		}
		ra, na := mavenTokenRank(ta)
		rb, nb := mavenTokenRank(tb)
		if ra != rb {
			return ra - rb
		}
		if na != nb {
			return na - nb
		}
	}
	return 0
}

// Tags orders registry tags (docker). Tags with a numeric prefix are
// ordered by that prefix; purely symbolic tags ("latest", "edge") only
// participate when no numeric tag matched the hint.
type Tags struct{}

var numPrefixRe = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)`)

func (Tags) SelectLatest(versions []string, hint string) (string, error) {
	matched := filterHint(versions, hint)
	if len(matched) == 0 {
		return "", ErrNoMatch
	}

	var numeric []string
	for _, v := range matched {
		if numPrefixRe.MatchString(v) {
			numeric = append(numeric, v)
		}
	}

	if len(numeric) == 0 {
		sorted := append([]string(nil), matched...)
		sort.Strings(sorted)
		return sorted[len(sorted)-1], nil
	}

	best := numeric[0]
	for _, v := range numeric[1:] {
		if tagCompare(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

func tagCompare(a, b string) int {
	pa := numPrefixRe.FindStringSubmatch(a)[1]
	pb := numPrefixRe.FindStringSubmatch(b)[1]
	va, errA := goversion.NewVersion(pa)
	vb, errB := goversion.NewVersion(pb)
	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// Loose orders versions with hashicorp/go-version, which accepts
// four-segment versions (nuget) and common pre-release suffixes.
type Loose struct{}

func (Loose) SelectLatest(versions []string, hint string) (string, error) {
	type parsed struct {
		raw string
		v   *goversion.Version
	}
	var stable, pre []parsed
	for _, raw := range filterHint(versions, hint) {
		v, err := goversion.NewVersion(raw)
		if err != nil {
			continue
		}
		p := parsed{raw: raw, v: v}
		if v.Prerelease() == "" {
			stable = append(stable, p)
		} else {
			pre = append(pre, p)
		}
	}

	pick := stable
	if len(pick) == 0 {
		pick = pre
	}
	if len(pick) == 0 {
		return "", ErrNoMatch
	}

	best := pick[0]
	for _, p := range pick[1:] {
		if p.v.GreaterThan(best.v) {
			best = p
		}
	}
	return best.raw, nil
}

// Generic orders versions with the scheme-agnostic vers comparison.
// Used where no stricter grammar applies (git tags, tool feeds, gems).
type Generic struct{}

var prereleaseTokens = map[string]bool{
	"alpha": true, "beta": true, "rc": true, "dev": true,
	"pre": true, "preview": true, "snapshot": true, "nightly": true,
}

func genericPrerelease(v string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, tok := range tokens {
		tok = strings.TrimRight(tok, "0123456789")
		if prereleaseTokens[tok] {
			return true
		}
	}
	return false
}

func (Generic) SelectLatest(versions []string, hint string) (string, error) {
	var stable, pre []string
	for _, raw := range filterHint(versions, hint) {
		if genericPrerelease(raw) {
			pre = append(pre, raw)
		} else {
			stable = append(stable, raw)
		}
	}

	pick := stable
	if len(pick) == 0 {
		pick = pre
	}
	if len(pick) == 0 {
		return "", ErrNoMatch
	}

	// Compare without the "v" prefix common on git tags; the original
	// string is what callers get back.
	best := pick[0]
	for _, v := range pick[1:] {
		if vers.Compare(strings.TrimPrefix(v, "v"), strings.TrimPrefix(best, "v")) > 0 {
			best = v
		}
	}
	return best, nil
}
