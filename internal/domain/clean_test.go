package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(line int, name, lat, lon, danger string) RawRow {
	return RawRow{Line: line, Fields: map[string]string{
		DefaultStationColumn: name,
		ColumnLatitude:       lat,
		ColumnLongitude:      lon,
		ColumnDangerLevel:    danger,
	}}
}

func TestCleanRows(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		stations, dropped := CleanRows([]RawRow{row(2, " Hardinge Bridge ", "24.07", " 89.03 ", "14.25")}, DefaultStationColumn)

		require.Len(t, stations, 1)
		assert.Empty(t, dropped)
		assert.Equal(t, "Hardinge Bridge", stations[0].Name)
		assert.Equal(t, 24.07, stations[0].Latitude)
		assert.Equal(t, 89.03, stations[0].Longitude)
		assert.Equal(t, 14.25, stations[0].DangerLevel)
		assert.Nil(t, stations[0].Extra)
	})

	t.Run("extra columns pass through", func(t *testing.T) {
		r := row(2, "Bahadurabad", "25.15", "89.70", "19.50")
		r.Fields["River"] = "Jamuna"
		stations, _ := CleanRows([]RawRow{r}, DefaultStationColumn)

		require.Len(t, stations, 1)
		assert.Equal(t, map[string]string{"River": "Jamuna"}, stations[0].Extra)
	})

	tests := []struct {
		name   string
		row    RawRow
		reason string
	}{
		{"empty latitude", row(3, "A", "", "90", "10"), "Latitude is empty"},
		{"text longitude", row(4, "B", "23", "east", "10"), "Longitude \"east\" is not numeric"},
		{"missing danger", RawRow{Line: 5, Fields: map[string]string{ColumnLatitude: "23", ColumnLongitude: "90"}}, "Danger Level is empty"},
		{"nan danger", row(6, "C", "23", "90", "NaN"), "Danger Level \"NaN\" is not finite"},
		{"infinite latitude", row(7, "D", "Inf", "90", "10"), "Latitude \"Inf\" is not finite"},
		{"latitude out of range", row(8, "E", "123", "90", "10"), "Latitude 123 out of range"},
		{"longitude out of range", row(9, "F", "23", "-190", "10"), "Longitude -190 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stations, dropped := CleanRows([]RawRow{tt.row}, DefaultStationColumn)

			assert.Empty(t, stations)
			require.Len(t, dropped, 1)
			assert.Equal(t, tt.row.Line, dropped[0].Line)
			assert.Equal(t, tt.reason, dropped[0].Reason)
		})
	}

	t.Run("keeps order of surviving rows", func(t *testing.T) {
		rows := []RawRow{
			row(2, "A", "23", "90", "1"),
			row(3, "B", "x", "90", "2"),
			row(4, "C", "24", "91", "3"),
		}
		stations, dropped := CleanRows(rows, DefaultStationColumn)

		require.Len(t, stations, 2)
		assert.Equal(t, "A", stations[0].Name)
		assert.Equal(t, "C", stations[1].Name)
		require.Len(t, dropped, 1)
		assert.Equal(t, 3, dropped[0].Line)
	})

	t.Run("custom name column", func(t *testing.T) {
		r := RawRow{Line: 2, Fields: map[string]string{
			"Gauge": "Goalundo", ColumnLatitude: "23.77", ColumnLongitude: "89.76", ColumnDangerLevel: "8.65",
		}}
		stations, _ := CleanRows([]RawRow{r}, "Gauge")

		require.Len(t, stations, 1)
		assert.Equal(t, "Goalundo", stations[0].Name)
		assert.Nil(t, stations[0].Extra)
	})
}
