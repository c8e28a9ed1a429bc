package routes

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_rental_kiosk/app"
	"Gin_postgres_redis_rental_kiosk/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	kioskCtl := controllers.NewKioskController(s)
	itemCtl := controllers.NewItemController(s)
	rentalCtl := controllers.NewRentalController(s)
	userCtl := controllers.NewUserController(s)

	// 复用的中间件
	adminMW := app.AdminOnly(a.Config.Kiosk.AdminKeys)
	sweepMW := app.SweepOnVisit(a.Rentals, a.RDB, a.Config.Kiosk.SweepThrottle)

	// Health
	r.GET("/healthz", func(c *app.Ctx) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.Repo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, app.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, app.H{"ok": true})
	})

	// ------------------------------
	// 自助终端（无需登录）
	// ------------------------------
	kiosk := r.Group("/api/kiosk")
	{
		kiosk.POST("/identify", kioskCtl.Identify)
		kiosk.POST("/users", kioskCtl.Register)

		// 页面加载时先清理过期借用
		kiosk.GET("/items", sweepMW, kioskCtl.ListItems)
		kiosk.GET("/items/:id", sweepMW, kioskCtl.GetItem)

		// rent / queue 自身会先清理
		kiosk.POST("/items/:id/rent", kioskCtl.Rent)
		kiosk.POST("/items/:id/queue", kioskCtl.JoinQueue)

		kiosk.GET("/queue/:entryId", kioskCtl.QueueStatus)
		kiosk.DELETE("/queue/:entryId", kioskCtl.CancelQueue)
	}

	// ------------------------------
	// 管理端（X-Admin-Key）
	// ------------------------------
	admin := r.Group("/api/admin", adminMW)
	{
		admin.GET("/items", sweepMW, itemCtl.ListItems) // ?q=
		admin.POST("/items", itemCtl.CreateItem)
		admin.GET("/items/:id", sweepMW, itemCtl.GetItem)
		admin.PUT("/items/:id", itemCtl.UpdateItem)
		admin.DELETE("/items/:id", itemCtl.DeleteItem)
		admin.GET("/items/:id/queue", itemCtl.ItemQueue)
		admin.POST("/items/:id/queue/grant-next", itemCtl.GrantNext)

		admin.POST("/queue/:entryId/grant", rentalCtl.Grant)
		admin.DELETE("/queue/:entryId", rentalCtl.CancelQueue)

		admin.GET("/rentals", rentalCtl.ListRentals) // ?status=open|returned&userId=&itemId=&from=&to=
		admin.POST("/rentals/:id/return", rentalCtl.Return)
		admin.POST("/rentals/:id/extend", rentalCtl.Extend)
		admin.POST("/sweep", rentalCtl.Sweep)

		admin.GET("/users", userCtl.ListUsers) // ?q=&page=&size=
		admin.GET("/users/:id", userCtl.GetUser)
		admin.PUT("/users/:id", userCtl.UpdateUser)
		admin.DELETE("/users/:id", userCtl.DeleteUser)
	}
}
