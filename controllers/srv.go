// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"Gin_postgres_redis_rental_kiosk/app"
	"Gin_postgres_redis_rental_kiosk/config"
	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/rental"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Srv struct {
	Repo    *db.Repo
	Rentals *rental.Service
	Cfg     *config.Config
	Log     *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:    a.Repo,
		Rentals: a.Rentals,
		Cfg:     a.Config,
		Log:     a.Log,
	}
}

// --- helpers ---

// 错误类型 → HTTP 状态码
func statusFor(k rental.Kind) int {
	switch k {
	case rental.NotFound:
		return http.StatusNotFound
	case rental.ItemOccupied, rental.AlreadyQueued, rental.DailyCapExceeded,
		rental.ExtendBlockedByWaiters, rental.AlreadyExists:
		return http.StatusConflict
	case rental.QueueNotSupported:
		return http.StatusUnprocessableEntity
	case rental.ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Srv) ok(c *gin.Context, status int, data any) {
	c.JSON(status, app.H{"success": true, "data": data})
}

// fail renders any error as the failure envelope. Store failures are logged
// with their cause and shown only as PERSISTENCE_ERROR.
func (s *Srv) fail(c *gin.Context, err error) {
	e := rental.AsError(err, s.Rentals.Locale())
	status := statusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		s.Log.Error("request failed", "error", err, "path", c.FullPath(),
			"request_id", app.GetRequestID(c.Request.Context()))
	}
	body := app.H{"success": false, "errorKind": e.Kind, "message": e.Message}
	if e.Detail != "" {
		body["detail"] = e.Detail
	}
	c.AbortWithStatusJSON(status, body)
}

func (s *Srv) badRequest(c *gin.Context, err error) {
	detail := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		detail = verrs[0].Field() + " failed " + verrs[0].Tag()
	}
	s.fail(c, rental.Invalid(s.Rentals.Locale(), detail))
}

// idParam parses a positive int64 path parameter.
func (s *Srv) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, rental.Invalid(s.Rentals.Locale(), "invalid "+name))
		return 0, false
	}
	return id, true
}
