// controllers/rental_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_rental_kiosk/db"

	"github.com/gin-gonic/gin"
)

// RentalController is the admin side of the ledger and the queue.
type RentalController struct{ *Srv }

func NewRentalController(s *Srv) *RentalController { return &RentalController{Srv: s} }

// GET /api/admin/rentals?status=open|returned&userId=&itemId=&from=&to=&page=&size=
func (rc *RentalController) ListRentals(c *gin.Context) {
	q := db.RentalsQuery{Status: c.Query("status")}
	q.UserID, _ = strconv.ParseInt(c.Query("userId"), 10, 64)
	q.ItemID, _ = strconv.ParseInt(c.Query("itemId"), 10, 64)
	q.From, _ = strconv.ParseInt(c.Query("from"), 10, 64)
	q.To, _ = strconv.ParseInt(c.Query("to"), 10, 64)
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := rc.Rentals.ListRentals(c.Request.Context(), q)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.ok(c, http.StatusOK, res)
}

// POST /api/admin/rentals/:id/return
func (rc *RentalController) Return(c *gin.Context) {
	id, ok := rc.idParam(c, "id")
	if !ok {
		return
	}
	rt, err := rc.Rentals.ReturnItem(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.ok(c, http.StatusOK, rt)
}

// POST /api/admin/rentals/:id/extend
func (rc *RentalController) Extend(c *gin.Context) {
	id, ok := rc.idParam(c, "id")
	if !ok {
		return
	}
	rt, err := rc.Rentals.ExtendRental(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.ok(c, http.StatusOK, rt)
}

// POST /api/admin/queue/:entryId/grant
func (rc *RentalController) Grant(c *gin.Context) {
	id, ok := rc.idParam(c, "entryId")
	if !ok {
		return
	}
	rt, err := rc.Rentals.GrantQueueEntry(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.ok(c, http.StatusCreated, rt)
}

// DELETE /api/admin/queue/:entryId
func (rc *RentalController) CancelQueue(c *gin.Context) {
	id, ok := rc.idParam(c, "entryId")
	if !ok {
		return
	}
	if err := rc.Rentals.CancelQueueEntry(c.Request.Context(), id); err != nil {
		rc.fail(c, err)
		return
	}
	rc.ok(c, http.StatusOK, gin.H{"id": id})
}

// POST /api/admin/sweep
func (rc *RentalController) Sweep(c *gin.Context) {
	freed, err := rc.Rentals.Sweep(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	if freed == nil {
		freed = []int64{}
	}
	rc.ok(c, http.StatusOK, gin.H{"freedItems": freed})
}
