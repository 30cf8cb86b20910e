package story

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStories() []Story {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Story{
		{ID: "a", Title: "Hytta på fjellet", Description: "Sommerferie", Category: "Barndom & Oppvekst", Duration: 300, PlayCount: 2, CreatedAt: base},
		{ID: "b", Title: "Bryllupet", Description: "Da vi giftet oss i 1968", Category: "Familie & Forhold", Duration: 900, PlayCount: 7, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "c", Title: "Første jobb", Description: "Fiskebruket", Category: "Jobb & Prestasjoner", Duration: 120, PlayCount: 0, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "d", Title: "Julaften", Description: "Familietradisjoner i barndommen", Category: "Barndom & Oppvekst", Duration: 450, PlayCount: 3, CreatedAt: base.Add(72 * time.Hour)},
	}
}

func ids(stories []Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}

func TestQueryApply(t *testing.T) {
	stories := sampleStories()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"default newest first", Query{}, []string{"d", "b", "c", "a"}},
		{"oldest", Query{Sort: SortOldest}, []string{"a", "c", "b", "d"}},
		{"longest", Query{Sort: SortLongest}, []string{"b", "d", "a", "c"}},
		{"most played", Query{Sort: SortMostPlayed}, []string{"b", "d", "a", "c"}},
		{"category", Query{Category: "Barndom & Oppvekst"}, []string{"d", "a"}},
		{"alle matches all", Query{Category: AllCategories, Sort: SortOldest}, []string{"a", "c", "b", "d"}},
		{"search title case-insensitive", Query{Search: "BRYLLUP"}, []string{"b"}},
		{"search description", Query{Search: "barndom"}, []string{"d"}},
		{"search and category", Query{Search: "jul", Category: "Familie & Forhold"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.query.Apply(stories))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	assert.Equal(t, "a", stories[0].ID, "input must stay untouched")
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, s)

	s, err = ParseSort("most-played")
	require.NoError(t, err)
	assert.Equal(t, SortMostPlayed, s)

	_, err = ParseSort("random")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	got := Categories(sampleStories())
	want := []string{"alle", "Barndom & Oppvekst", "Familie & Forhold", "Jobb & Prestasjoner"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"alle"}, Categories(nil))
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleStories())
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, 1770, sum.TotalDuration)
	assert.Equal(t, 12, sum.TotalPlays)
	assert.InDelta(t, 442.5, sum.AverageDuration, 0.001)
	assert.Equal(t, 2, sum.CategoryCounts["Barndom & Oppvekst"])

	empty := Summarize(nil)
	assert.Zero(t, empty.AverageDuration)
	assert.NotNil(t, empty.CategoryCounts)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "1:05", FormatDuration(65))
	assert.Equal(t, "12:34", FormatDuration(754))
	assert.Equal(t, "5m", FormatLongDuration(330))
	assert.Equal(t, "2t 5m", FormatLongDuration(7500))
}

func TestNewStoryDefaults(t *testing.T) {
	s := New("user-1", "Min historie", time.Now())
	assert.Equal(t, DefaultCategory, s.Category)
	assert.False(t, s.IsPublic)
	assert.False(t, s.ShareSettings.AllowDownload)
	assert.True(t, s.ShareSettings.AllowComments)
	assert.Zero(t, s.PlayCount)
	require.NoError(t, s.Validate())

	s.Title = " "
	assert.ErrorIs(t, s.Validate(), ErrTitleRequired)
}

func TestTags(t *testing.T) {
	s := New("u", "t", time.Now())
	assert.True(t, s.AddTag("familie"))
	assert.False(t, s.AddTag("familie"))
	assert.False(t, s.AddTag("  "))
	assert.True(t, s.AddTag("reise"))
	assert.Equal(t, []string{"familie", "reise"}, s.Tags)

	assert.True(t, s.RemoveTag("familie"))
	assert.False(t, s.RemoveTag("familie"))
	assert.Equal(t, []string{"reise"}, s.Tags)
}

func TestVoiceCloneReady(t *testing.T) {
	assert.True(t, VoiceCloneReady("high", 121))
	assert.False(t, VoiceCloneReady("high", 120))
	assert.False(t, VoiceCloneReady("medium", 600))
}

func TestShareExpiredAndPublic(t *testing.T) {
	now := time.Now()
	s := New("u", "t", now)
	assert.False(t, s.ShareExpired(now))

	past := now.Add(-time.Minute)
	s.ShareSettings.ExpiresAt = &past
	assert.True(t, s.ShareExpired(now))

	s.ShareSettings.PasswordHash = "$2a$10$hash"
	pub := s.Public()
	assert.Empty(t, pub.ShareSettings.PasswordHash)
	assert.True(t, pub.ShareSettings.HasPassword)
	assert.NotEmpty(t, s.ShareSettings.PasswordHash)
}
