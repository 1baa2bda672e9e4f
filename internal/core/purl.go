package core

import (
	"github.com/git-pkgs/purl"
)

// QueryFromPURL builds a Query from a Package URL string, e.g.
// "pkg:npm/%40babel/core" or "pkg:maven/com.google.guava/guava".
// The PURL version component, if any, is ignored: this engine answers
// "latest", not "does version X exist".
func QueryFromPURL(purlStr string) (Query, error) {
	p, err := purl.Parse(purlStr)
	if err != nil {
		return Query{}, &InvalidInputError{Name: purlStr, Reason: err.Error()}
	}

	name := p.Name
	if p.Namespace != "" {
		switch p.Type {
		case "maven":
			name = p.Namespace + ":" + p.Name
		default:
			name = p.Namespace + "/" + p.Name
		}
	}

	return Query{Ecosystem: p.Type, Name: name}, nil
}
