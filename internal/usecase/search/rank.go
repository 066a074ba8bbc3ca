package search

import "sort"

// rankTop returns up to limit corpus rows ordered by descending score.
// The sort is stable, so equal scores keep corpus order and repeated
// queries against an unchanged corpus return identical rankings.
// exclude omits one row from the ranking (-1 to keep all), used by
// find-similar to drop the query document's trivial self-match.
func rankTop(scores []float64, exclude, limit int) []int {
	rows := make([]int, 0, len(scores))
	for i := range scores {
		if i == exclude {
			continue
		}
		rows = append(rows, i)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return scores[rows[a]] > scores[rows[b]]
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
