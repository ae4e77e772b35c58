package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"unicode/utf8"

	"blacklist-api/internal/domain"

	"github.com/google/uuid"
)

// MessageEmailAdded is returned after a successful add.
const MessageEmailAdded = "Email added to blacklist successfully"

const (
	maxEmailLength     = 320
	maxLocalPartLength = 64
	maxDomainLength    = 255
	maxLabelLength     = 63
)

// BlacklistCreateRequest is a validated add request. The caller's IP is not part of it.
type BlacklistCreateRequest struct {
	Email         string
	AppUUID       uuid.UUID
	BlockedReason *string
}

// blacklistCreatePayload mirrors the wire body. Fields outside it are dropped on decode.
type blacklistCreatePayload struct {
	Email         *string `json:"email"`
	AppUUID       *string `json:"app_uuid"`
	BlockedReason *string `json:"blocked_reason"`
}

type BlacklistCreateResponse struct {
	Message   string    `json:"message"`
	Email     string    `json:"email"`
	BlockedAt Timestamp `json:"blocked_at"`
}

type BlacklistCheckResponse struct {
	Email         string     `json:"email"`
	IsBlocked     bool       `json:"is_blocked"`
	BlockedReason *string    `json:"blocked_reason"`
	BlockedAt     *Timestamp `json:"blocked_at"`
}

// DecodeBlacklistCreateRequest reads and validates an add request body.
// Malformed or invalid input is reported as ValidationErrors; a failing reader
// (for example an exceeded size limit) is returned wrapped.
func DecodeBlacklistCreateRequest(body io.Reader) (BlacklistCreateRequest, error) {
	dec := json.NewDecoder(body)

	var payload blacklistCreatePayload
	if err := dec.Decode(&payload); err != nil {
		return BlacklistCreateRequest{}, decodeError(err)
	}

	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err != nil && !isJSONError(err) {
			return BlacklistCreateRequest{}, fmt.Errorf("read request body: %w", err)
		}
		return BlacklistCreateRequest{}, ValidationErrors{
			bodyFieldError("", "unexpected data after JSON body", "value_error.jsondecode"),
		}
	}

	return payload.validate()
}

// decodeError turns JSON failures into ValidationErrors. Failures of the
// underlying reader are returned wrapped so callers can inspect them.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return ValidationErrors{
			bodyFieldError(typeErr.Field, "value has an invalid type", "type_error"),
		}
	}
	if !isJSONError(err) {
		return fmt.Errorf("read request body: %w", err)
	}
	return ValidationErrors{
		bodyFieldError("", "invalid JSON body", "value_error.jsondecode"),
	}
}

func isJSONError(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func (p blacklistCreatePayload) validate() (BlacklistCreateRequest, error) {
	var (
		req  BlacklistCreateRequest
		errs ValidationErrors
	)

	switch {
	case p.Email == nil:
		errs = append(errs, bodyFieldError("email", "field required", "value_error.missing"))
	case !IsValidEmail(*p.Email):
		errs = append(errs, bodyFieldError("email", "value is not a valid email address", "value_error.email"))
	default:
		req.Email = *p.Email
	}

	switch {
	case p.AppUUID == nil:
		errs = append(errs, bodyFieldError("app_uuid", "field required", "value_error.missing"))
	default:
		parsed, err := uuid.Parse(*p.AppUUID)
		if err != nil {
			errs = append(errs, bodyFieldError("app_uuid", "value is not a valid uuid", "type_error.uuid"))
		} else {
			req.AppUUID = parsed
		}
	}

	if p.BlockedReason != nil {
		if utf8.RuneCountInString(*p.BlockedReason) > domain.MaxBlockedReasonLength {
			errs = append(errs, bodyFieldError("blocked_reason", "ensure this value has at most 255 characters", "value_error.any_str.max_length"))
		} else {
			reason := *p.BlockedReason
			req.BlockedReason = &reason
		}
	}

	if len(errs) > 0 {
		return BlacklistCreateRequest{}, errs
	}
	return req, nil
}

// IsValidEmail accepts a bare addr-spec with a dot-atom local part and a
// dotted DNS host name. Display names, comments, quoted local parts and
// domain literals are rejected.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	return validLocalPart(email[:at]) && validHost(email[at+1:])
}

func validLocalPart(local string) bool {
	if local == "" || len(local) > maxLocalPartLength {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	return !strings.Contains(local, "..")
}

func validHost(host string) bool {
	if len(host) > maxDomainLength {
		return false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, c := range tld {
		if !isASCIILetter(c) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		if !isASCIILetter(c) && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}
	return true
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// NewBlacklistCreateResponse builds the add confirmation from the stored record.
func NewBlacklistCreateResponse(entry *domain.BlacklistEntry) BlacklistCreateResponse {
	return BlacklistCreateResponse{
		Message:   MessageEmailAdded,
		Email:     entry.Email,
		BlockedAt: NewTimestamp(entry.CreatedAt),
	}
}

// NewBlacklistCheckResponse reports a lookup result; a nil entry means not blocked.
func NewBlacklistCheckResponse(email string, entry *domain.BlacklistEntry) BlacklistCheckResponse {
	if entry == nil {
		return BlacklistCheckResponse{Email: email}
	}

	var reason *string
	if entry.BlockedReason != nil {
		r := *entry.BlockedReason
		reason = &r
	}
	return BlacklistCheckResponse{
		Email:         email,
		IsBlocked:     true,
		BlockedReason: reason,
		BlockedAt:     NewNullableTimestamp(entry.CreatedAt),
	}
}
