package domain

// OTPRecord is a one-time code issued to an email address.
// PK: email, SK: created_at. A record is never mutated after creation:
// verification, expiry and cleanup all delete.
type OTPRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"-" dynamodbav:"code"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"` // Unix nanos; sort key, breaks ties between issuances
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds; also the DynamoDB TTL attribute
}

// OTPStatus is the closed set of verification outcomes. These are results,
// not errors: the handler switches on them to pick the user-facing message.
type OTPStatus string

const (
	OTPVerified OTPStatus = "verified"
	OTPInvalid  OTPStatus = "invalid"
	OTPExpired  OTPStatus = "expired"
	OTPNotFound OTPStatus = "not_found"
)
