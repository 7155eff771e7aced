package dategrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsContactLineDetectsEmailPhoneURL(t *testing.T) {
	assert.True(t, IsContactLine("jane.doe@example.com"))
	assert.True(t, IsContactLine("+1 415 555 0100"))
	assert.True(t, IsContactLine("www.linkedin.com/in/janedoe"))
	assert.True(t, IsContactLine("12345"))
	assert.False(t, IsContactLine("Senior Software Engineer, Acme Corp"))
}

func TestIsPresentTokenRecognizesVariants(t *testing.T) {
	for _, tok := range []string{"Present", "current", "Now", "Ongoing", "till date", "Until"} {
		assert.True(t, IsPresentToken(tok), "expected %q to be a present token", tok)
	}
	assert.False(t, IsPresentToken("Software Engineer"))
}

func TestLooksLikeDateLine(t *testing.T) {
	assert.True(t, LooksLikeDateLine("Jan 2019 - Present"))
	assert.True(t, LooksLikeDateLine("03/2018 to 06/2021"))
	assert.True(t, LooksLikeDateLine("2015 - 2018"))
	assert.False(t, LooksLikeDateLine("jane.doe@example.com"))
	assert.False(t, LooksLikeDateLine("Responsible for backend services"))
}

func TestExtractDateRangeMonthYearToPresent(t *testing.T) {
	dr, ok := ExtractDateRange("Jan 2019 - Present")
	require.True(t, ok)
	assert.Equal(t, 2019, dr.Start.Year)
	assert.Equal(t, 1, dr.Start.Month)
	assert.True(t, dr.End.IsPresent)
}

func TestExtractDateRangeNumericMonthYear(t *testing.T) {
	dr, ok := ExtractDateRange("03/2018 to 06/2021")
	require.True(t, ok)
	assert.Equal(t, 2018, dr.Start.Year)
	assert.Equal(t, 3, dr.Start.Month)
	assert.Equal(t, 2021, dr.End.Year)
	assert.Equal(t, 6, dr.End.Month)
}

func TestExtractDateRangeBareYears(t *testing.T) {
	dr, ok := ExtractDateRange("2015 - 2018")
	require.True(t, ok)
	assert.Equal(t, 2015, dr.Start.Year)
	assert.Equal(t, 2018, dr.End.Year)
}

func TestExtractDateRangeRejectsContactLines(t *testing.T) {
	_, ok := ExtractDateRange("jane.doe@example.com")
	assert.False(t, ok)
}

func TestExtractDateRangeRejectsNonDateLine(t *testing.T) {
	_, ok := ExtractDateRange("Led a team of five backend engineers")
	assert.False(t, ok)
}

func TestParseYearHandlesTwoDigitApostropheForm(t *testing.T) {
	dr, ok := ExtractDateRange("Jun '19 - Aug '21")
	require.True(t, ok)
	assert.Equal(t, 2019, dr.Start.Year)
	assert.Equal(t, 2021, dr.End.Year)
}
