// File: database/repository/property/queries.go
package propertyRepo

import (
	"context"
	"fmt"
	"strings"

	"viewingdesk/models"
)

// Known catalog headers mapped onto typed Property fields.
const (
	headerID        = "物件ID"
	headerName      = "物件名"
	headerArea      = "エリア"
	headerRent      = "賃料"
	headerFloorPlan = "間取り"
	headerOccupancy = "空室状況"
)

func (repo *sheetsPropertyRepo) List(ctx context.Context) ([]models.Property, error) {
	resp, err := repo.svc.Spreadsheets.Values.Get(repo.spreadsheetID, repo.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read property sheet: %w", err)
	}
	return rowsToProperties(resp.Values), nil
}

// rowsToProperties treats the first row as headers; cells missing from short rows become "".
func rowsToProperties(values [][]interface{}) []models.Property {
	if len(values) < 2 {
		return []models.Property{}
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(cellString(h))
	}

	properties := make([]models.Property, 0, len(values)-1)
	for _, row := range values[1:] {
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				fields[h] = cellString(row[i])
			} else {
				fields[h] = ""
			}
		}
		properties = append(properties, models.Property{
			ID:        fields[headerID],
			Name:      fields[headerName],
			Area:      fields[headerArea],
			Rent:      fields[headerRent],
			FloorPlan: fields[headerFloorPlan],
			Occupancy: fields[headerOccupancy],
			Fields:    fields,
		})
	}
	return properties
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
