package domain

import "time"

// Audit actions recorded by the company auth flow.
const (
	ActionOTPIssued      = "otp_issued"
	ActionOTPSendFailed  = "otp_send_failed"
	ActionOTPVerified    = "otp_verified"
	ActionOTPRejected    = "otp_rejected"
	ActionTokenIssued    = "token_issued"
	ResourceCompanyOTP   = "company_otp"
	ResourceCompanyToken = "company_token"
)

// AuditLog represents an audit event. CompanyID is zero when no company could be resolved
// (e.g. an OTP rejected for an unknown phone).
type AuditLog struct {
	ID        string
	CompanyID int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
