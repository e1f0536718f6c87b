package finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueRecord(item LineItem, year Year, v float64) Record {
	return Record{LineItem: item, Year: year, Value: &v, Confidence: ConfidenceOK}
}

func TestDeduplicate(t *testing.T) {
	t.Run("ok replaces missing", func(t *testing.T) {
		got := Deduplicate([]Record{
			missingRecord(Revenue, 2022),
			valueRecord(Revenue, 2022, 500),
		})
		require.Len(t, got, 1)
		assertValue(t, got[0], 500, ConfidenceOK)
	})

	t.Run("ties keep the first", func(t *testing.T) {
		got := Deduplicate([]Record{
			valueRecord(Revenue, 2022, 500),
			valueRecord(Revenue, 2022, 900),
		})
		require.Len(t, got, 1)
		assertValue(t, got[0], 500, ConfidenceOK)
	})

	t.Run("worse never replaces better", func(t *testing.T) {
		got := Deduplicate([]Record{
			valueRecord(Revenue, 2022, 500),
			{LineItem: Revenue, Year: 2022, Confidence: ConfidenceLow},
			missingRecord(Revenue, 2022),
		})
		require.Len(t, got, 1)
		assertValue(t, got[0], 500, ConfidenceOK)
	})

	t.Run("low confidence is upgraded", func(t *testing.T) {
		got := Deduplicate([]Record{
			{LineItem: NetIncome, Year: 2021, Confidence: ConfidenceLow},
			valueRecord(NetIncome, 2021, -3),
		})
		require.Len(t, got, 1)
		assertValue(t, got[0], -3, ConfidenceOK)
	})

	t.Run("distinct keys keep first appearance order", func(t *testing.T) {
		got := Deduplicate([]Record{
			valueRecord(NetIncome, 2021, 1),
			valueRecord(Revenue, 2021, 2),
			valueRecord(NetIncome, 2020, 3),
		})
		require.Len(t, got, 3)
		assert.Equal(t, NetIncome, got[0].LineItem)
		assert.Equal(t, Revenue, got[1].LineItem)
		assert.Equal(t, Year(2020), got[2].Year)
	})
}

func TestConfidence_Rank(t *testing.T) {
	assert.True(t, ConfidenceOK.Better(ConfidenceLow))
	assert.True(t, ConfidenceLow.Better(ConfidenceMissing))
	assert.True(t, ConfidenceMissing.Better(ConfidenceReviewRequired))
	assert.False(t, ConfidenceMissing.Better(ConfidenceMissing))
	assert.True(t, ConfidenceReviewRequired.Better(Confidence(42)))
	assert.Equal(t, "Review Required", ConfidenceReviewRequired.String())
}

func TestFillGaps(t *testing.T) {
	items := []LineItem{Revenue, NetIncome}

	got := FillGaps([]Record{valueRecord(Revenue, 2022, 1)}, items, YearSet{2021, 2022})
	require.Len(t, got, 4)
	assertValue(t, got[0], 1, ConfidenceOK)
	assert.Contains(t, got, missingRecord(Revenue, 2021))
	assert.Contains(t, got, missingRecord(NetIncome, 2021))
	assert.Contains(t, got, missingRecord(NetIncome, 2022))

	got = FillGaps(nil, items, nil)
	assert.Equal(t, []Record{missingRecord(Revenue, UnknownYear), missingRecord(NetIncome, UnknownYear)}, got)
}

func TestRecord_JSON(t *testing.T) {
	data, err := json.Marshal([]Record{
		valueRecord(NetIncome, 2022, -50),
		missingRecord(EBITDA, UnknownYear),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"line_item":"Net Income","year":2022,"value":-50,"confidence":"OK"},
		{"line_item":"EBITDA","year":"Unknown","value":null,"confidence":"Missing"}
	]`, string(data))
}
