package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_rental_kiosk/rental"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/admin/users?q=kim&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Rentals.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		uc.fail(c, err)
		return
	}
	uc.ok(c, http.StatusOK, res)
}

// GET /api/admin/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := uc.idParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.Rentals.GetUser(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	uc.ok(c, http.StatusOK, user)
}

// PUT /api/admin/users/:id
// 借用记录里的姓名电话是快照，不随之修改
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := uc.idParam(c, "id")
	if !ok {
		return
	}
	var in rental.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		uc.badRequest(c, err)
		return
	}
	user, err := uc.Rentals.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		uc.fail(c, err)
		return
	}
	uc.ok(c, http.StatusOK, user)
}

// DELETE /api/admin/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := uc.idParam(c, "id")
	if !ok {
		return
	}
	if err := uc.Rentals.DeleteUser(c.Request.Context(), id); err != nil {
		uc.fail(c, err)
		return
	}
	uc.ok(c, http.StatusOK, gin.H{"id": id})
}
