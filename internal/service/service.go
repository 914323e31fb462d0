package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"voxwave-backend/internal/portal"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"
	"voxwave-backend/lib/bookingcode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	report_service_ensure_session   = "service.ensure-session"
	report_service_download_voucher = "service.download-voucher"
	report_service_customer_details = "service.customer-details"
	report_service_booking_forecast = "service.booking-forecast"
	report_service_archive_voucher  = "service.archive-voucher"
)

var tracer = otel.Tracer("voxwave.service")

type Authenticator interface {
	Login(ctx context.Context) bool
}

type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, query url.Values) ([]byte, error)
}

// VoucherArchive keeps a copy of every downloaded voucher, it is write only.
type VoucherArchive interface {
	Save(ctx context.Context, bookingCode string, bookingNumber int, pdf []byte) error
}

type Options struct {
	Store     *session.Store
	Auth      Authenticator
	Fetcher   Fetcher
	Endpoints portal.Endpoints
	Schema    portal.Schema
	// Archive can be nil.
	Archive VoucherArchive
	Tel     telemetry.API
}

// Service implements the three portal operations. Each one makes sure a
// session exists first, logging in at most once per call.
type Service struct {
	store     *session.Store
	auth      Authenticator
	fetcher   Fetcher
	endpoints portal.Endpoints
	schema    portal.Schema
	archive   VoucherArchive
	tel       telemetry.API

	logins singleflight.Group
}

func NewService(opts Options) *Service {
	return &Service{
		store:     opts.Store,
		auth:      opts.Auth,
		fetcher:   opts.Fetcher,
		endpoints: opts.Endpoints,
		schema:    opts.Schema,
		archive:   opts.Archive,
		tel:       telemetry.NewScopedAPI("service", opts.Tel),
	}
}

func (s *Service) SessionPresent() bool {
	_, ok := s.store.Get()
	return ok
}

// EnsureSession logs in if there is no session. Concurrent callers share a
// single login attempt.
func (s *Service) EnsureSession(ctx context.Context) error {
	if s.SessionPresent() {
		return nil
	}

	_, err, shared := s.logins.Do("login", func() (any, error) {
		if s.SessionPresent() {
			return nil, nil
		}
		s.tel.ReportDebug("no session, logging in")
		// the login is shared, a caller going away should not abort it
		// for everyone else waiting on it.
		if !s.auth.Login(context.WithoutCancel(ctx)) {
			return nil, ErrAuth
		}
		return nil, nil
	})
	if err != nil {
		s.tel.ReportBroken(report_service_ensure_session, err, shared)
		return err
	}
	return nil
}

// fetch retries once with a new session if the portal rejected the current
// one.
func (s *Service) fetch(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	used, _ := s.store.Get()
	body, err := s.fetcher.Fetch(ctx, endpoint, query)
	if errors.Is(err, portal.ErrSessionExpired) {
		s.tel.ReportWarning(report_service_ensure_session, "session rejected, logging in again", endpoint)
		s.store.Invalidate(used)

		err = s.EnsureSession(ctx)
		if err != nil {
			return nil, err
		}
		body, err = s.fetcher.Fetch(ctx, endpoint, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return body, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

type Voucher struct {
	BookingCode   string
	BookingNumber int
	PDF           []byte
}

func (s *Service) DownloadVoucher(ctx context.Context, code string) (voucher Voucher, err error) {
	ctx, span := tracer.Start(ctx, "DownloadVoucher", trace.WithAttributes(
		attribute.String("booking_code", code),
	))
	defer func() {
		endSpan(span, err)
		if err != nil {
			s.tel.ReportBroken(report_service_download_voucher, err, code)
		}
	}()

	if code == "" {
		return Voucher{}, fmt.Errorf("%w: booking code is required", ErrInput)
	}

	err = s.EnsureSession(ctx)
	if err != nil {
		return Voucher{}, err
	}

	number, err := bookingcode.Decode(code)
	if err != nil {
		return Voucher{}, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	span.SetAttributes(attribute.Int("booking_number", number))

	pdf, err := s.fetch(ctx, s.endpoints.Voucher(number), nil)
	if err != nil {
		return Voucher{}, err
	}

	voucher = Voucher{
		BookingCode:   code,
		BookingNumber: number,
		PDF:           pdf,
	}
	if s.archive != nil {
		archiveErr := s.archive.Save(ctx, code, number, pdf)
		if archiveErr != nil {
			s.tel.ReportWarning(report_service_archive_voucher, archiveErr, code)
		}
	}
	return voucher, nil
}

func (s *Service) CustomerDetails(ctx context.Context, date, optionID string) (customers []portal.CustomerRecord, err error) {
	ctx, span := tracer.Start(ctx, "CustomerDetails", trace.WithAttributes(
		attribute.String("date", date),
		attribute.String("option_id", optionID),
	))
	defer func() {
		endSpan(span, err)
		if err != nil {
			s.tel.ReportBroken(report_service_customer_details, err, date, optionID)
		}
	}()

	if date == "" || optionID == "" {
		return nil, fmt.Errorf("%w: date and option_id are required", ErrInput)
	}

	err = s.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.fetch(ctx, s.endpoints.CustomerDetail(), portal.CustomerDetailQuery(date, optionID))
	if err != nil {
		return nil, err
	}
	customers, err = portal.ScrapeCustomers(page, s.schema.Customers)
	if err != nil {
		return nil, fmt.Errorf("%w: parse customer details: %w", ErrUpstream, err)
	}
	s.tel.ReportCount(report_service_customer_details, int64(len(customers)))
	return customers, nil
}

func (s *Service) BookingForecast(ctx context.Context) (bookings []portal.ForecastEntry, err error) {
	ctx, span := tracer.Start(ctx, "BookingForecast")
	defer func() {
		endSpan(span, err)
		if err != nil {
			s.tel.ReportBroken(report_service_booking_forecast, err)
		}
	}()

	err = s.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.fetch(ctx, s.endpoints.Forecast(), nil)
	if err != nil {
		return nil, err
	}
	bookings, err = portal.ScrapeForecast(page, s.endpoints.Origin, s.schema.Forecast)
	if err != nil {
		return nil, fmt.Errorf("%w: parse booking forecast: %w", ErrUpstream, err)
	}
	s.tel.ReportCount(report_service_booking_forecast, int64(len(bookings)))
	return bookings, nil
}
