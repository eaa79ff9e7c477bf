// Package segment splits classified profiles into the commercial contact
// lists: one per category, chosen by each profile's strongest tier, plus a
// negative list for disqualified profiles.
package segment

import (
	"sort"

	"github.com/seqlab/prospect/internal/classify"
	"github.com/seqlab/prospect/internal/rubric"
)

// Assignment is one profile placed in a list, with its 1-based position.
type Assignment struct {
	Item classify.Item
	Rank int
}

// Segments holds the five lists.
type Segments struct {
	Categories map[rubric.Category][]Assignment
	Negative   []Assignment
}

// Split assigns every item to exactly one list. Profiles with either
// negative factor go to the negative list regardless of scores. The rest go
// to the category with their best tier; ties resolve by the fixed
// precedence in rubric.TieBreakOrder, so an all-BAIXA profile still lands
// in the first category of that order. Lists are sorted by name and ranked
// 1..n.
func Split(items []classify.Item) Segments {
	s := Segments{
		Categories: make(map[rubric.Category][]Assignment, 4),
	}
	for _, cat := range rubric.Categories() {
		s.Categories[cat] = nil
	}

	for _, item := range items {
		if item.Score.Negative() {
			s.Negative = append(s.Negative, Assignment{Item: item})
			continue
		}
		cat := bestCategory(item)
		s.Categories[cat] = append(s.Categories[cat], Assignment{Item: item})
	}

	for cat := range s.Categories {
		finishList(s.Categories[cat])
	}
	finishList(s.Negative)
	return s
}

// bestCategory picks the category with the highest tier, breaking ties by
// the fixed precedence order.
func bestCategory(item classify.Item) rubric.Category {
	best := rubric.TierBaixa
	for _, cr := range item.Score.Categories {
		if cr.Tier > best {
			best = cr.Tier
		}
	}
	for _, cat := range rubric.TieBreakOrder {
		if item.Score.Categories[cat].Tier == best {
			return cat
		}
	}
	return rubric.TieBreakOrder[0]
}

// finishList orders a list by profile name and assigns dense 1-based ranks.
func finishList(list []Assignment) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Item.Source.Record.Name < list[j].Item.Source.Record.Name
	})
	for i := range list {
		list[i].Rank = i + 1
	}
}

// Viable returns every non-negative item ordered by mean score descending.
// Input order breaks ties.
func Viable(items []classify.Item) []classify.Item {
	var out []classify.Item
	for _, item := range items {
		if !item.Score.Negative() {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Mean > out[j].Score.Mean
	})
	return out
}
