// controllers/kiosk_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/rental"

	"github.com/gin-gonic/gin"
)

// KioskController serves the customer touchscreen. Customers do not log in;
// every action names the user id returned by identify or register.
type KioskController struct{ *Srv }

func NewKioskController(s *Srv) *KioskController { return &KioskController{Srv: s} }

type identifyReq struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// POST /api/kiosk/identify
func (kc *KioskController) Identify(c *gin.Context) {
	var in identifyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		kc.badRequest(c, err)
		return
	}
	u, err := kc.Rentals.IdentifyUser(c.Request.Context(), in.Name, in.PhoneNumber)
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusOK, u)
}

// POST /api/kiosk/users
func (kc *KioskController) Register(c *gin.Context) {
	var in rental.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		kc.badRequest(c, err)
		return
	}
	u, err := kc.Rentals.RegisterUser(c.Request.Context(), in)
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusCreated, u)
}

// GET /api/kiosk/items?q=
func (kc *KioskController) ListItems(c *gin.Context) {
	list, err := kc.Rentals.ListItemStatuses(c.Request.Context(), db.ItemsQuery{Q: c.Query("q")})
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusOK, list)
}

// GET /api/kiosk/items/:id
func (kc *KioskController) GetItem(c *gin.Context) {
	id, ok := kc.idParam(c, "id")
	if !ok {
		return
	}
	st, err := kc.Rentals.GetItemStatus(c.Request.Context(), id)
	if err != nil {
		kc.fail(c, err)
		return
	}
	if !st.Item.OnKiosk() {
		kc.fail(c, rental.Missing(kc.Rentals.Locale(), "item"))
		return
	}
	kc.ok(c, http.StatusOK, st)
}

type partyReq struct {
	UserID      int64 `json:"userId" binding:"required,gt=0"`
	MaleCount   *int  `json:"maleCount"`
	FemaleCount *int  `json:"femaleCount"`
}

// party is nil when the caller sent neither count.
func (p partyReq) party() *rental.Party {
	if p.MaleCount == nil && p.FemaleCount == nil {
		return nil
	}
	out := &rental.Party{}
	if p.MaleCount != nil {
		out.Male = *p.MaleCount
	}
	if p.FemaleCount != nil {
		out.Female = *p.FemaleCount
	}
	return out
}

// POST /api/kiosk/items/:id/rent
func (kc *KioskController) Rent(c *gin.Context) {
	id, ok := kc.idParam(c, "id")
	if !ok {
		return
	}
	var in partyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		kc.badRequest(c, err)
		return
	}
	rt, err := kc.Rentals.RentNow(c.Request.Context(), rental.RentRequest{
		UserID: in.UserID, ItemID: id, Party: in.party(),
	})
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusCreated, rt)
}

// POST /api/kiosk/items/:id/queue
func (kc *KioskController) JoinQueue(c *gin.Context) {
	id, ok := kc.idParam(c, "id")
	if !ok {
		return
	}
	var in partyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		kc.badRequest(c, err)
		return
	}
	tk, err := kc.Rentals.JoinQueue(c.Request.Context(), rental.QueueRequest{
		UserID: in.UserID, ItemID: id, Party: in.party(),
	})
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusCreated, tk)
}

// GET /api/kiosk/queue/:entryId
func (kc *KioskController) QueueStatus(c *gin.Context) {
	id, ok := kc.idParam(c, "entryId")
	if !ok {
		return
	}
	tk, err := kc.Rentals.QueuePosition(c.Request.Context(), id)
	if err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusOK, tk)
}

// DELETE /api/kiosk/queue/:entryId
func (kc *KioskController) CancelQueue(c *gin.Context) {
	id, ok := kc.idParam(c, "entryId")
	if !ok {
		return
	}
	if err := kc.Rentals.CancelQueueEntry(c.Request.Context(), id); err != nil {
		kc.fail(c, err)
		return
	}
	kc.ok(c, http.StatusOK, gin.H{"id": id})
}
