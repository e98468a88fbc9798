package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
)

func TestRegionRowsToCollection(t *testing.T) {
	note := "Sáp nhập từ xã A và xã B"
	rows := []regionRow{
		{
			Code:              "29212",
			Name:              "Xã Long Phước",
			Kind:              "Xã",
			Population:        18500,
			AreaKm2:           32.5,
			DensityPerKm2:     569.23,
			DominantEthnicity: "Kinh",
			MergeNote:         &note,
			Breakdown: []model.EthnicShare{
				{Ethnicity: "Kinh", Count: 18000, Percentage: 97.3},
				{Ethnicity: "Khmer", Count: 500, Percentage: 2.7},
			},
			Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[[[105.9,10.2],[106.0,10.2],[106.0,10.3],[105.9,10.2]]]}`),
		},
	}

	body, err := regionRowsToCollection(rows)
	require.NoError(t, err)

	regions, err := helper.DecodeRegionCollection(body)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "29212", r.Code)
	assert.Equal(t, "Xã Long Phước", r.Name)
	assert.Equal(t, int64(18500), r.Population)
	assert.Equal(t, 569.23, r.DensityPerKm2)
	assert.Equal(t, note, r.MergeNote)
	require.Len(t, r.EthnicBreakdown, 2)
	assert.Equal(t, "Khmer", r.EthnicBreakdown[1].Ethnicity)
}

func TestRegionRowsToCollection_InvalidGeometry(t *testing.T) {
	_, err := regionRowsToCollection([]regionRow{{Code: "1", Geometry: json.RawMessage(`{"type":`)}})
	assert.Error(t, err)
}

func TestOutlineRowsToCollection(t *testing.T) {
	body, err := outlineRowsToCollection([]outlineRow{{
		Name:     "Vĩnh Long",
		Geometry: json.RawMessage(`{"type":"MultiPolygon","coordinates":[[[[105.9,10.2],[106.0,10.2],[106.0,10.3],[105.9,10.2]]]]}`),
	}})
	require.NoError(t, err)

	geoms, err := helper.DecodeOutline(body)
	require.NoError(t, err)
	assert.Len(t, geoms, 1)
}
