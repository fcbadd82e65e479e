// Package service implements company OTP issuance and verification and company access token issuance.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	auditdomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/audit/domain"
	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
	otpdomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/otp/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/ratelimit"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
	tokendomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/token/domain"
	tokenrepo "github.com/abdul-rozzaq/StaffFlow-backend/internal/token/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrNotFound          = errors.New("company not found")
	ErrMissingContact    = errors.New("company has no phone number")
	ErrInvalidCredential = errors.New("invalid phone number or code")
	ErrExpired           = errors.New("code expired")
	ErrNotifyFailed      = errors.New("code delivery failed")
	ErrRateLimited       = errors.New("too many code requests")
)

const tracerName = "staffflow.companyauth"

// DefaultNotifyTimeout bounds a notifier dispatch when none is configured.
const DefaultNotifyTimeout = 10 * time.Second

// CompanyRepo is the minimal company repository needed by the auth service.
type CompanyRepo interface {
	GetByStir(ctx context.Context, stir string) (*companydomain.Company, error)
	GetByPhone(ctx context.Context, phone string) (*companydomain.Company, error)
	ListRequests(ctx context.Context, companyID int64) ([]*companydomain.Request, error)
}

// OTPRepo is the minimal one-time code repository needed by the auth service.
type OTPRepo interface {
	Upsert(ctx context.Context, c *otpdomain.Credential) error
	GetByCompanyAndCode(ctx context.Context, companyID int64, codeHash string) (*otpdomain.Credential, error)
	Consume(ctx context.Context, companyID int64, codeHash string) (bool, error)
}

// TokenRepo is the minimal access token repository needed by the auth service.
type TokenRepo interface {
	GetByCompany(ctx context.Context, companyID int64) (*tokendomain.AccessToken, error)
	Create(ctx context.Context, t *tokendomain.AccessToken) error
}

// IssueLimiter caps OTP issuance per company.
type IssueLimiter interface {
	AllowIssue(ctx context.Context, companyID int64) error
}

// AuditLogger records company auth events. Best-effort.
type AuditLogger interface {
	LogEvent(ctx context.Context, companyID int64, action, resource, metadata string)
}

// IssueResult is the outcome of IssueOTP. Phone is the destination the code was sent to.
type IssueResult struct {
	CompanyID int64
	Phone     string
}

// VerifyResult is the outcome of a successful VerifyOTP.
type VerifyResult struct {
	Token   string
	Company *companydomain.Company
}

// AuthService implements the OTP issuer, the OTP verifier and the token issuer for companies.
type AuthService struct {
	companies     CompanyRepo
	otps          OTPRepo
	tokens        TokenRepo
	notifier      notify.Notifier
	ttl           time.Duration
	notifyTimeout time.Duration

	limiter IssueLimiter
	audit   AuditLogger
	events  telemetry.EventEmitter
	metrics *Metrics
	tracer  trace.Tracer
	log     *slog.Logger
	now     func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// ttl <= 0 uses the default 5 minute window; notifyTimeout <= 0 uses DefaultNotifyTimeout.
func NewAuthService(
	companies CompanyRepo,
	otps OTPRepo,
	tokens TokenRepo,
	notifier notify.Notifier,
	ttl, notifyTimeout time.Duration,
) *AuthService {
	if ttl <= 0 {
		ttl = otpdomain.DefaultTTL
	}
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &AuthService{
		companies:     companies,
		otps:          otps,
		tokens:        tokens,
		notifier:      notifier,
		ttl:           ttl,
		notifyTimeout: notifyTimeout,
		tracer:        otel.Tracer(tracerName),
		log:           logging.Discard(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetLimiter enables issuance rate limiting. nil disables it.
func (s *AuthService) SetLimiter(l IssueLimiter) { s.limiter = l }

// SetAuditLogger sets the audit logger. nil disables audit logging.
func (s *AuthService) SetAuditLogger(a AuditLogger) { s.audit = a }

// SetEventEmitter sets the emitter for company auth events. nil disables emission.
func (s *AuthService) SetEventEmitter(e telemetry.EventEmitter) { s.events = e }

// SetMetrics sets the counters. nil disables metrics.
func (s *AuthService) SetMetrics(m *Metrics) { s.metrics = m }

// SetLogger sets the logger. nil discards.
func (s *AuthService) SetLogger(l *slog.Logger) { s.log = logging.OrDiscard(l) }

// SetNow overrides the clock. Used by tests.
func (s *AuthService) SetNow(now func() time.Time) { s.now = now }

// TTL returns the OTP validity window.
func (s *AuthService) TTL() time.Duration { return s.ttl }

// IssueOTP creates or replaces the one-time code of the company identified by stir and sends it to
// the company's phone. The code is persisted before delivery is attempted; when delivery fails the
// result is still returned together with an error wrapping ErrNotifyFailed, and the code stays valid.
func (s *AuthService) IssueOTP(ctx context.Context, stir string) (*IssueResult, error) {
	ctx, span := s.tracer.Start(ctx, "companyauth.IssueOTP")
	defer span.End()

	stir = strings.TrimSpace(stir)
	if stir == "" {
		return nil, ErrNotFound
	}
	company, err := s.companies.GetByStir(ctx, stir)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("lookup company: %w", err))
	}
	if company == nil {
		return nil, ErrNotFound
	}
	span.SetAttributes(attribute.Int64("company.id", company.ID))
	if !company.HasPhone() {
		return nil, ErrMissingContact
	}

	if s.limiter != nil {
		if err := s.limiter.AllowIssue(ctx, company.ID); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				s.metrics.issue(ctx, outcomeRateLimited)
				return nil, ErrRateLimited
			}
			// Limiter outage must not block sign-in.
			s.log.WarnContext(ctx, "otp rate limiter unavailable", "company_id", company.ID, "error", err)
		}
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("generate otp: %w", err))
	}
	cred := &otpdomain.Credential{
		CompanyID: company.ID,
		CodeHash:  security.HashOTP(code),
		CreatedAt: s.now(),
	}
	// The upsert is a single statement; let it finish even if the client goes away.
	if err := s.otps.Upsert(context.WithoutCancel(ctx), cred); err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("store otp: %w", err))
	}

	result := &IssueResult{CompanyID: company.ID, Phone: company.Phone}
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	msg := notify.Message{Phone: company.Phone, Code: code, ExpiresAt: cred.ExpiresAt(s.ttl)}
	if err := s.notifier.Notify(notifyCtx, msg); err != nil {
		s.log.WarnContext(ctx, "otp delivery failed", "company_id", company.ID, "error", err)
		s.metrics.issue(ctx, outcomeNotifyFailed)
		s.record(ctx, company.ID, auditdomain.ActionOTPSendFailed, auditdomain.ResourceCompanyOTP,
			telemetry.EventOTPSendFailed, map[string]string{"error": err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "notify failed")
		return result, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	s.log.InfoContext(ctx, "otp issued", "company_id", company.ID)
	s.metrics.issue(ctx, outcomeSent)
	s.record(ctx, company.ID, auditdomain.ActionOTPIssued, auditdomain.ResourceCompanyOTP, telemetry.EventOTPSent, nil)
	return result, nil
}

// VerifyOTP checks code against the pending one-time code of the company owning phone.
// Any lookup miss yields ErrInvalidCredential; a matching code past its window yields ErrExpired
// and is left in place. On success the code is consumed and the company's access token is returned.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "companyauth.VerifyOTP")
	defer span.End()

	phone = companydomain.NormalizePhone(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		s.reject(ctx, 0, "missing_input")
		return nil, ErrInvalidCredential
	}
	company, err := s.companies.GetByPhone(ctx, phone)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("lookup company: %w", err))
	}
	if company == nil {
		s.reject(ctx, 0, "unknown_phone")
		return nil, ErrInvalidCredential
	}
	span.SetAttributes(attribute.Int64("company.id", company.ID))

	codeHash := security.HashOTP(code)
	cred, err := s.otps.GetByCompanyAndCode(ctx, company.ID, codeHash)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("lookup otp: %w", err))
	}
	if cred == nil || !security.OTPEqual(code, cred.CodeHash) {
		s.reject(ctx, company.ID, "no_match")
		return nil, ErrInvalidCredential
	}
	if cred.Expired(s.now(), s.ttl) {
		s.metrics.verify(ctx, outcomeExpired)
		s.record(ctx, company.ID, auditdomain.ActionOTPRejected, auditdomain.ResourceCompanyOTP,
			telemetry.EventOTPRejected, map[string]string{"reason": "expired"})
		return nil, ErrExpired
	}

	consumed, err := s.otps.Consume(context.WithoutCancel(ctx), company.ID, codeHash)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("consume otp: %w", err))
	}
	if !consumed {
		// A concurrent verification or a new issuance won the row.
		s.reject(ctx, company.ID, "consumed")
		return nil, ErrInvalidCredential
	}
	s.metrics.verify(ctx, outcomeVerified)
	s.record(ctx, company.ID, auditdomain.ActionOTPVerified, auditdomain.ResourceCompanyOTP, telemetry.EventOTPVerified, nil)

	tok, err := s.IssueOrFetchToken(ctx, company.ID)
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}
	s.log.InfoContext(ctx, "otp verified", "company_id", company.ID)
	return &VerifyResult{Token: tok.Secret, Company: company}, nil
}

// IssueOrFetchToken returns the company's access token, creating it on first use.
// A concurrent creation for the same company is resolved by re-reading the winner's row. A conflict
// with no row for the company means the secret collided with another company's token; the create is
// retried once with a fresh secret.
func (s *AuthService) IssueOrFetchToken(ctx context.Context, companyID int64) (*tokendomain.AccessToken, error) {
	existing, err := s.tokens.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	for attempt := 0; ; attempt++ {
		secret, err := security.GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		t := &tokendomain.AccessToken{CompanyID: companyID, Secret: secret, CreatedAt: s.now()}
		err = s.tokens.Create(context.WithoutCancel(ctx), t)
		if errors.Is(err, tokenrepo.ErrConflict) {
			winner, rerr := s.tokens.GetByCompany(ctx, companyID)
			if rerr != nil {
				return nil, fmt.Errorf("reread token: %w", rerr)
			}
			if winner != nil {
				return winner, nil
			}
			if attempt < secretCollisionRetries {
				s.log.WarnContext(ctx, "token secret collision, retrying", "company_id", companyID)
				continue
			}
		}
		if err != nil {
			return nil, fmt.Errorf("create token: %w", err)
		}
		s.metrics.tokenCreated(ctx)
		s.record(ctx, companyID, auditdomain.ActionTokenIssued, auditdomain.ResourceCompanyToken, telemetry.EventTokenIssued, nil)
		return t, nil
	}
}

// secretCollisionRetries bounds the creates retried after a secret collision.
const secretCollisionRetries = 1

// Requests returns the requests filed by the company, newest first.
func (s *AuthService) Requests(ctx context.Context, companyID int64) ([]*companydomain.Request, error) {
	return s.companies.ListRequests(ctx, companyID)
}

func (s *AuthService) reject(ctx context.Context, companyID int64, reason string) {
	s.metrics.verify(ctx, outcomeInvalid)
	s.record(ctx, companyID, auditdomain.ActionOTPRejected, auditdomain.ResourceCompanyOTP,
		telemetry.EventOTPRejected, map[string]string{"reason": reason})
}

func (s *AuthService) record(ctx context.Context, companyID int64, action, resource, eventType string, meta map[string]string) {
	event := telemetry.NewEvent(companyID, eventType, meta)
	if s.audit != nil {
		s.audit.LogEvent(ctx, companyID, action, resource, string(event.Metadata))
	}
	if s.events != nil {
		telemetry.EmitAsync(s.events, ctx, event)
	}
}

func (s *AuthService) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.ErrorContext(ctx, "company auth failed", "error", err)
	return err
}
