package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viewingdesk/models"
	"viewingdesk/services/reservation"
	"viewingdesk/utils"
)

const localTimeLayout = "2006-01-02T15:04"

// ReservationHandler serves lookup, availability, update and cancel.
type ReservationHandler struct {
	Service reservation.ReservationService
	Tokens  *utils.LookupTokenIssuer
}

func NewReservationHandler(svc reservation.ReservationService, tokens *utils.LookupTokenIssuer) *ReservationHandler {
	return &ReservationHandler{Service: svc, Tokens: tokens}
}

type reservationView struct {
	models.Reservation
	ViewingAtLocal string `json:"viewingAtLocal,omitempty"`
}

func (h *ReservationHandler) view(r *models.Reservation) reservationView {
	v := reservationView{Reservation: *r}
	if !r.ViewingAt.IsZero() {
		v.ViewingAtLocal = h.Service.Calendar().Local(r.ViewingAt).Format(localTimeLayout)
	}
	return v
}

// writeServiceError maps service errors onto status codes. Infrastructure details never reach the client.
func writeServiceError(c *gin.Context, err error, invalidMsg, notFoundMsg string) {
	var violation *reservation.RuleViolation
	switch {
	case errors.As(err, &violation):
		status := http.StatusBadRequest
		if violation.Kind == reservation.RuleSlotBooked || violation.Kind == reservation.RuleSlotBusy {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": violation.Reason, "rule": violation.Kind})
	case errors.Is(err, reservation.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		getLogger(c).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": utils.GenericServerError})
	}
}

// LookupHandler finds an active reservation by reception code and phone and issues an edit token.
func (h *ReservationHandler) LookupHandler(c *gin.Context) {
	const invalidMsg = "受付番号と電話番号を入力してください。"
	const notFoundMsg = "予約が見つかりませんでした。受付番号と電話番号をご確認ください。"

	var body struct {
		ReservationID string `json:"reservationId"`
		Phone         string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
		return
	}

	r, err := h.Service.Lookup(c.Request.Context(), body.ReservationID, body.Phone)
	if err != nil {
		writeServiceError(c, err, invalidMsg, notFoundMsg)
		return
	}

	token, err := h.Tokens.GenerateToken(r.RecordID)
	if err != nil {
		getLogger(c).Error("failed to sign lookup token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": utils.GenericServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recordId":    r.RecordID,
		"reservation": h.view(r),
		"token":       token,
	})
}

// CheckAvailabilityHandler answers live availability queries; rule rejections are 200 with available=false.
func (h *ReservationHandler) CheckAvailabilityHandler(c *gin.Context) {
	const invalidMsg = "物件名と日時を指定してください。"

	var body struct {
		Property        string `json:"property"`
		DateTime        string `json:"dateTime"`
		ExcludeRecordID string `json:"excludeRecordId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
		return
	}

	at, err := h.Service.Calendar().ParseInstant(body.DateTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
		return
	}

	result, err := h.Service.CheckAvailability(c.Request.Context(), body.Property, at, body.ExcludeRecordID)
	if err != nil {
		writeServiceError(c, err, invalidMsg, "")
		return
	}
	c.JSON(http.StatusOK, result)
}

// authorizedFor reports whether the lookup token attached by middleware covers recordID.
func authorizedFor(c *gin.Context, recordID string) bool {
	v, ok := c.Get("tokenRecordID")
	if !ok {
		return false
	}
	id, ok := v.(string)
	return ok && id != "" && id == recordID
}

// UpdateHandler changes phone, property or viewing time of a looked-up reservation.
func (h *ReservationHandler) UpdateHandler(c *gin.Context) {
	const invalidMsg = "必要なデータが不足しています。"
	const notFoundMsg = "予約が見つかりませんでした。"

	var body struct {
		RecordID string `json:"recordId"`
		Fields   *struct {
			Phone     *string `json:"phone"`
			Property  *string `json:"property"`
			ViewingAt *string `json:"viewingAt"`
		} `json:"fields"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RecordID == "" || body.Fields == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
		return
	}
	if !authorizedFor(c, body.RecordID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	changes := models.ReservationChanges{
		Phone:    body.Fields.Phone,
		Property: body.Fields.Property,
	}
	if body.Fields.ViewingAt != nil {
		at, err := h.Service.Calendar().ParseInstant(*body.Fields.ViewingAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
			return
		}
		changes.ViewingAt = &at
	}

	updated, err := h.Service.Update(c.Request.Context(), body.RecordID, changes)
	if err != nil {
		writeServiceError(c, err, invalidMsg, notFoundMsg)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reservation": h.view(updated)})
}

// CancelHandler marks a looked-up reservation as cancelled.
func (h *ReservationHandler) CancelHandler(c *gin.Context) {
	const invalidMsg = "レコードIDが必要です。"
	const notFoundMsg = "予約が見つかりませんでした。"

	var body struct {
		RecordID string `json:"recordId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RecordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
		return
	}
	if !authorizedFor(c, body.RecordID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	already, err := h.Service.Cancel(c.Request.Context(), body.RecordID)
	if err != nil {
		writeServiceError(c, err, invalidMsg, notFoundMsg)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "alreadyCancelled": already})
}
