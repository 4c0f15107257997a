package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	regmetrics "nftgate/internal/registration/metrics"
	"nftgate/internal/registration/models"
	dErrors "nftgate/pkg/domain-errors"
	"nftgate/pkg/platform/privacy"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/requestcontext"
)

type Store interface {
	Exists(ctx context.Context, walletAddress string) (bool, error)
	Insert(ctx context.Context, record *models.Record) error
}

type EventPublisher interface {
	PublishRegistrationCreated(ctx context.Context, event models.RegistrationCreated) error
}

// RegisterCommand carries the already-parsed registration form.
type RegisterCommand struct {
	WalletAddress string
	Name          string
	DateOfBirth   time.Time
	Gender        models.Gender
	MaritalStatus models.MaritalStatus
}

// Service answers registration status and creates registrations. It holds
// no locks and no per-wallet state: concurrent registrations for one wallet
// are resolved by the store's uniqueness constraint alone.
type Service struct {
	store     Store
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *regmetrics.Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("nftgate/registration")
	}
	return s
}

// Status reports whether walletAddress has a registration record.
func (s *Service) Status(ctx context.Context, walletAddress string) (registered bool, err error) {
	ctx, span := s.tracer.Start(ctx, "registration.Status")
	defer func() { endSpan(span, err) }()

	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return false, dErrors.New(dErrors.CodeBadRequest, "walletAddress is required")
	}

	start := time.Now()
	registered, err = s.store.Exists(ctx, walletAddress)
	s.metrics.ObserveStore("exists", start)
	if err != nil {
		s.metrics.IncStatusCheck(regmetrics.StatusError)
		s.logger.ErrorContext(ctx, "registration status lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", privacy.MaskWallet(walletAddress),
			"error", err,
		)
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration status")
	}

	if registered {
		s.metrics.IncStatusCheck(regmetrics.StatusRegistered)
	} else {
		s.metrics.IncStatusCheck(regmetrics.StatusUnregistered)
	}
	span.SetAttributes(attribute.Bool("registration.registered", registered))
	return registered, nil
}

// Register creates the registration record for cmd.WalletAddress. A
// duplicate wallet surfaces as a conflict whose chain still carries
// sentinel.ErrAlreadyUsed.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (record *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register")
	defer func() { endSpan(span, err) }()

	record, err = models.NewRecord(cmd.WalletAddress, cmd.Name, cmd.DateOfBirth, cmd.Gender, cmd.MaritalStatus)
	if err != nil {
		s.metrics.IncRegistration(regmetrics.OutcomeInvalid)
		return nil, err
	}

	start := time.Now()
	err = s.store.Insert(ctx, record)
	s.metrics.ObserveStore("insert", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.IncRegistration(regmetrics.OutcomeDuplicate)
			span.SetAttributes(attribute.String("registration.outcome", regmetrics.OutcomeDuplicate))
			s.logger.InfoContext(ctx, "duplicate registration rejected",
				"request_id", requestcontext.RequestID(ctx),
				"wallet", privacy.MaskWallet(record.WalletAddress),
			)
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "wallet already registered")
		}
		s.metrics.IncRegistration(regmetrics.OutcomeError)
		s.logger.ErrorContext(ctx, "registration insert failed",
			"request_id", requestcontext.RequestID(ctx),
			"wallet", privacy.MaskWallet(record.WalletAddress),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register wallet")
	}

	s.metrics.IncRegistration(regmetrics.OutcomeCreated)
	span.SetAttributes(attribute.String("registration.outcome", regmetrics.OutcomeCreated))
	s.logger.InfoContext(ctx, "wallet registered",
		"request_id", requestcontext.RequestID(ctx),
		"wallet", privacy.MaskWallet(record.WalletAddress),
	)
	s.publishCreated(ctx, record)
	return record, nil
}

// publishCreated never fails the registration; the row is already committed.
func (s *Service) publishCreated(ctx context.Context, record *models.Record) {
	if s.publisher == nil {
		return
	}
	event := models.RegistrationCreated{
		EventID:       uuid.NewString(),
		WalletAddress: record.WalletAddress,
		RegisteredAt:  record.RegistrationDate,
	}
	if err := s.publisher.PublishRegistrationCreated(ctx, event); err != nil {
		s.metrics.IncEventPublishFailed()
		s.logger.WarnContext(ctx, "failed to publish registration event",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", event.EventID,
			"error", err,
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
