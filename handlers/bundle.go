// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"viewingdesk/utils"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Tokens *utils.LookupTokenIssuer

	// Reservation endpoints
	LookupHandler            gin.HandlerFunc
	CheckAvailabilityHandler gin.HandlerFunc
	UpdateHandler            gin.HandlerFunc
	CancelHandler            gin.HandlerFunc

	// Property catalog endpoints
	ListPropertiesHandler gin.HandlerFunc
}
