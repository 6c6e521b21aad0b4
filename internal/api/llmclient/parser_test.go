package llmclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/agent-service/internal/types"
)

const validPayload = `{
	"itinerary": [
		{
			"day_number": 1,
			"date": "2026-03-10",
			"morning": {"time": "9:00 AM", "activity": "Museum Visit", "description": "History and art"}
		}
	],
	"activities": [],
	"restaurants": [],
	"packing_list": ["Walking shoes"],
	"local_tips": ["Carry cash"],
	"weather_summary": "Sunny all week"
}`

func TestParseResponse_DirectJSON(t *testing.T) {
	it, err := ParseResponse(validPayload)
	require.NoError(t, err)
	require.Len(t, it.Itinerary, 1)
	assert.Equal(t, 1, it.Itinerary[0].DayNumber)
	assert.Equal(t, "Museum Visit", it.Itinerary[0].Morning.Activity)
	assert.Equal(t, "Sunny all week", it.WeatherSummary)
}

func TestParseResponse_JSONFence(t *testing.T) {
	raw := "Here is your itinerary:\n```json\n" + validPayload + "\n```\nEnjoy your trip!"

	it, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sunny all week", it.WeatherSummary)
}

func TestParseResponse_PlainFence(t *testing.T) {
	raw := "```\n" + validPayload + "\n```"

	it, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Len(t, it.Itinerary, 1)
	assert.Equal(t, "2026-03-10", it.Itinerary[0].Date)
}

func TestParseResponse_BraceExtraction(t *testing.T) {
	raw := "Sure! Here you go: " + validPayload + " Let me know if you need changes."

	it, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Walking shoes"}, it.PackingList)
}

func TestParseResponse_RepairsQuotesAndTrailingCommas(t *testing.T) {
	raw := `{'itinerary': [], 'activities': [], 'restaurants': [], 'packing_list': ['Hat',], 'local_tips': [], 'weather_summary': 'Mild',}`

	it, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hat"}, it.PackingList)
	assert.Equal(t, "Mild", it.WeatherSummary)
}

func TestParseResponse_Unparseable(t *testing.T) {
	it, err := ParseResponse("I could not produce an itinerary, sorry.")
	assert.Nil(t, it)
	assert.True(t, errors.Is(err, types.ErrLLMParseFailed))
}

func TestParseResponse_EmptyInput(t *testing.T) {
	_, err := ParseResponse("")
	assert.ErrorIs(t, err, types.ErrLLMParseFailed)
}
