package story

import (
	"fmt"
	"sort"
	"strings"
)

// AllCategories is the category filter value that matches everything.
const AllCategories = "alle"

type SortOption string

const (
	SortNewest     SortOption = "newest"
	SortOldest     SortOption = "oldest"
	SortLongest    SortOption = "longest"
	SortMostPlayed SortOption = "most-played"
)

func ParseSort(s string) (SortOption, error) {
	switch SortOption(s) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortLongest, SortMostPlayed:
		return SortOption(s), nil
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// Query filters and orders a story list the way the story overview does.
type Query struct {
	Search   string
	Category string
	Sort     SortOption
}

func (q Query) matches(s Story) bool {
	if q.Category != "" && q.Category != AllCategories && s.Category != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.Description), term)
}

// Apply returns the matching stories in the requested order. The input is
// not modified.
func (q Query) Apply(stories []Story) []Story {
	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if q.matches(s) {
			out = append(out, s)
		}
	}

	var less func(a, b Story) bool
	switch q.Sort {
	case SortOldest:
		less = func(a, b Story) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortLongest:
		less = func(a, b Story) bool { return a.Duration > b.Duration }
	case SortMostPlayed:
		less = func(a, b Story) bool { return a.PlayCount > b.PlayCount }
	default:
		less = func(a, b Story) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Categories lists the filter choices: "alle" followed by each distinct
// category in first-seen order.
func Categories(stories []Story) []string {
	seen := map[string]bool{}
	cats := []string{AllCategories}
	for _, s := range stories {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	return cats
}

type Summary struct {
	Count           int            `json:"count"`
	TotalDuration   int            `json:"totalDuration"`
	TotalPlays      int            `json:"totalPlays"`
	AverageDuration float64        `json:"averageDuration"`
	CategoryCounts  map[string]int `json:"categoryCounts"`
}

func Summarize(stories []Story) Summary {
	sum := Summary{Count: len(stories), CategoryCounts: map[string]int{}}
	for _, s := range stories {
		sum.TotalDuration += s.Duration
		sum.TotalPlays += s.PlayCount
		sum.CategoryCounts[s.Category]++
	}
	if sum.Count > 0 {
		sum.AverageDuration = float64(sum.TotalDuration) / float64(sum.Count)
	}
	return sum
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatLongDuration renders seconds as "2t 5m" or "5m".
func FormatLongDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dt %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
