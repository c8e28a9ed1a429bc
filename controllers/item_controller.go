// controllers/item_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/rental"

	"github.com/gin-gonic/gin"
)

// ItemController is the admin inventory screen.
type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// GET /api/admin/items?q=   含隐藏物品
func (ic *ItemController) ListItems(c *gin.Context) {
	list, err := ic.Rentals.ListItemStatuses(c.Request.Context(), db.ItemsQuery{Q: c.Query("q"), IncludeHidden: true})
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusOK, list)
}

// POST /api/admin/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in rental.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ic.badRequest(c, err)
		return
	}
	it, err := ic.Rentals.CreateItem(c.Request.Context(), in)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusCreated, it)
}

// GET /api/admin/items/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	id, ok := ic.idParam(c, "id")
	if !ok {
		return
	}
	st, err := ic.Rentals.GetItemStatus(c.Request.Context(), id)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusOK, st)
}

// PUT /api/admin/items/:id
// 关闭限时会强制归还当前借用并清空排队
func (ic *ItemController) UpdateItem(c *gin.Context) {
	id, ok := ic.idParam(c, "id")
	if !ok {
		return
	}
	var in rental.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ic.badRequest(c, err)
		return
	}
	it, err := ic.Rentals.UpdateItem(c.Request.Context(), id, in)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusOK, it)
}

// DELETE /api/admin/items/:id
func (ic *ItemController) DeleteItem(c *gin.Context) {
	id, ok := ic.idParam(c, "id")
	if !ok {
		return
	}
	if err := ic.Rentals.DeleteItem(c.Request.Context(), id); err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusOK, gin.H{"id": id})
}

// GET /api/admin/items/:id/queue
func (ic *ItemController) ItemQueue(c *gin.Context) {
	id, ok := ic.idParam(c, "id")
	if !ok {
		return
	}
	list, err := ic.Rentals.ItemQueue(c.Request.Context(), id)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusOK, list)
}

// POST /api/admin/items/:id/queue/grant-next
func (ic *ItemController) GrantNext(c *gin.Context) {
	id, ok := ic.idParam(c, "id")
	if !ok {
		return
	}
	rt, err := ic.Rentals.GrantNext(c.Request.Context(), id)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.ok(c, http.StatusCreated, rt)
}
