package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"voxwave-backend/internal/portal"
	"voxwave-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Operations is the part of service.Service the routes need.
type Operations interface {
	SessionPresent() bool
	DownloadVoucher(ctx context.Context, code string) (service.Voucher, error)
	CustomerDetails(ctx context.Context, date, optionID string) ([]portal.CustomerRecord, error)
	BookingForecast(ctx context.Context) ([]portal.ForecastEntry, error)
}

type Options struct {
	// AllowedOrigins is the CORS allow list, empty allows every origin.
	AllowedOrigins []string
}

const requestIdHeader = "X-Request-Id"

const (
	msgBookingCodeRequired = "Booking code is required"
	msgCustomerQuery       = "date and option_id are required"
	msgLoginFailed         = "Login failed"
	msgVoucherFailed       = "An error occurred while generating the PDF"
	msgCustomersFailed     = "Failed to fetch customer details"
	msgForecastFailed      = "Failed to fetch booking forecast data"
)

func NewRouter(ops Operations, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestId())
	r.Use(logRequests())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIdHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", requestIdHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	h := handlers{ops: ops}
	r.GET("/healthz", h.health)
	r.POST("/download-voucher-pdf", h.downloadVoucher)
	r.POST("/get-customer-details", h.customerDetails)
	r.GET("/get-booking-forecast", h.bookingForecast)

	return r
}

// requestId tags every request with an id, a client supplied one is kept.
func requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIdHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIdHeader, id)
		c.Header(requestIdHeader, id)
		c.Next()
	}
}

func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info(
			"request",
			"request_id", c.GetString(requestIdHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type handlers struct {
	ops Operations
}

func fail(c *gin.Context, status int, message string, err error) {
	if err != nil {
		slog.Warn(
			"request failed",
			"request_id", c.GetString(requestIdHeader),
			"path", c.Request.URL.Path,
			"err", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// failOperation maps a service error to a response, failedMessage is used
// for everything that is not an input or login error.
func failOperation(c *gin.Context, err error, inputMessage, failedMessage string) {
	switch {
	case errors.Is(err, service.ErrInput):
		fail(c, http.StatusBadRequest, inputMessage, err)
	case errors.Is(err, service.ErrAuth):
		fail(c, http.StatusForbidden, msgLoginFailed, err)
	default:
		fail(c, http.StatusInternalServerError, failedMessage, err)
	}
}

func (h handlers) health(c *gin.Context) {
	sessionState := "absent"
	if h.ops.SessionPresent() {
		sessionState = "present"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session": sessionState})
}

type voucherRequest struct {
	BookingCode string `json:"bookingCode"`
}

func (h handlers) downloadVoucher(c *gin.Context) {
	var req voucherRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || req.BookingCode == "" {
		fail(c, http.StatusBadRequest, msgBookingCodeRequired, err)
		return
	}

	voucher, err := h.ops.DownloadVoucher(c.Request.Context(), req.BookingCode)
	if err != nil {
		failOperation(c, err, msgBookingCodeRequired, msgVoucherFailed)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=voucher.pdf")
	c.Data(http.StatusOK, "application/pdf", voucher.PDF)
}

type customerDetailsRequest struct {
	Date     string   `json:"date"`
	OptionID optionID `json:"option_id"`
}

// optionID accepts a json string or number and keeps it as written.
type optionID string

func (o *optionID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*o = optionID(s)
		return nil
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("option_id must be a string or a number: %w", err)
	}
	*o = optionID(n.String())
	return nil
}

func (h handlers) customerDetails(c *gin.Context) {
	var req customerDetailsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || req.Date == "" || req.OptionID == "" {
		fail(c, http.StatusBadRequest, msgCustomerQuery, err)
		return
	}

	customers, err := h.ops.CustomerDetails(c.Request.Context(), req.Date, string(req.OptionID))
	if err != nil {
		failOperation(c, err, msgCustomerQuery, msgCustomersFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h handlers) bookingForecast(c *gin.Context) {
	bookings, err := h.ops.BookingForecast(c.Request.Context())
	if err != nil {
		failOperation(c, err, msgForecastFailed, msgForecastFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
