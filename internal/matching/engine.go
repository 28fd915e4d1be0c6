package matching

import (
	"cmp"
	"slices"

	"github.com/erazemk/najdeno/internal/model"
)

// Score returns the weighted total of the field similarities of a lost
// and a found report under p.
func Score(lost, found model.Item, p Policy) float64 {
	name := Similarity(lost.Name, found.Name) * p.NameWeight
	location := Similarity(lost.Location, found.Location) * p.LocationWeight
	desc := Similarity(description(lost), description(found)) * p.DescriptionWeight
	return name + location + desc
}

// FindMatches scores every (lost, found) pair, keeps the pairs scoring at
// least p.Threshold and returns them best first.
//
// Pairs are enumerated lost-major in the order the slices are given, and
// the sort is stable, so equal scores keep that enumeration order. Each
// match holds its own copies of both reports.
func FindMatches(lost, found []model.Item, p Policy) []model.Match {
	matches := []model.Match{}

	for _, l := range lost {
		for _, f := range found {
			total := Score(l, f, p)
			if total < p.Threshold {
				continue
			}
			matches = append(matches, model.Match{
				Lost:  l,
				Found: f,
				Score: total,
			})
		}
	}

	slices.SortStableFunc(matches, func(a, b model.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}

// description treats a missing description as the stored placeholder.
func description(it model.Item) string {
	if it.Description == "" {
		return model.DefaultDescription
	}
	return it.Description
}
