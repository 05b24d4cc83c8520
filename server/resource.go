package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
)

type resource struct {
	messages     MessageHandler
	reservations ReservationLister
	restaurants  RestaurantLister
}

func (rs *resource) register(r *gin.RouterGroup) {
	r.POST("messages", rs.PostMessage)
	r.GET("restaurants", rs.ListRestaurants)
	r.GET("admin/reservations", rs.ListReservations)
}

// maxMessageBytes bounds the request body read for a message.
const maxMessageBytes = 16 << 10

type messageReq struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type messageResp struct {
	Reply string `json:"reply"`
}

type listReservationsReq struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

func (rs *resource) PostMessage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes)

	var req messageReq
	if !bind(c, &req, binding.JSON) {
		return
	}
	reply := rs.messages.HandleMessage(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, messageResp{Reply: reply})
}

func (rs *resource) ListRestaurants(c *gin.Context) {
	c.JSON(http.StatusOK, rs.restaurants.All())
}

// ListReservations returns raw rows newest first.
func (rs *resource) ListReservations(c *gin.Context) {
	var req listReservationsReq
	if !bind(c, &req, binding.Query) {
		return
	}
	rows, err := rs.reservations.List(c.Request.Context(), req.Limit)
	if err != nil {
		logx.Ctx(c.Request.Context()).Error().Err(err).Msg("list_reservations_failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// bind writes a 400 with per-field messages, or a 413 for an oversize body,
// and returns false when req is invalid.
func bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case nil:
		return true
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	case validator.ValidationErrors:
		fields := make(map[string][]string, len(err))
		for _, ferr := range err {
			fields[ferr.Field()] = append(fields[ferr.Field()], ferr.Error())
		}
		c.JSON(http.StatusBadRequest, fields)
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": err.Error()})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	}
	return false
}
