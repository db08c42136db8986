// File: database/repository/property/interface.go
package propertyRepo

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"viewingdesk/models"
)

// PropertyRepository reads the property catalog snapshot.
type PropertyRepository interface {
	List(ctx context.Context) ([]models.Property, error)
}

type sheetsPropertyRepo struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsPropertyRepo builds a catalog reader over the Sheets values API.
// Credentials are normally supplied with option.WithCredentialsJSON; scopes default to read-only.
func NewSheetsPropertyRepo(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (PropertyRepository, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &sheetsPropertyRepo{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}
