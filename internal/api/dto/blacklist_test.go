package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"blacklist-api/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppUUID = "123e4567-e89b-12d3-a456-426614174000"

func TestDecodeBlacklistCreateRequest_Valid(t *testing.T) {
	body := `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `","blocked_reason":"User reported for spam"}`

	req, err := DecodeBlacklistCreateRequest(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "spam@example.com", req.Email)
	assert.Equal(t, uuid.MustParse(testAppUUID), req.AppUUID)
	require.NotNil(t, req.BlockedReason)
	assert.Equal(t, "User reported for spam", *req.BlockedReason)
}

func TestDecodeBlacklistCreateRequest_WithoutReason(t *testing.T) {
	body := `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `"}`

	req, err := DecodeBlacklistCreateRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Nil(t, req.BlockedReason, "absent reason must stay nil, not empty string")
}

func TestDecodeBlacklistCreateRequest_IgnoresClientIP(t *testing.T) {
	body := `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `","ip_address":"6.6.6.6"}`

	req, err := DecodeBlacklistCreateRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "spam@example.com", req.Email)
}

func TestDecodeBlacklistCreateRequest_FieldErrors(t *testing.T) {
	longReason := strings.Repeat("é", domain.MaxBlockedReasonLength+1)

	cases := []struct {
		name     string
		body     string
		wantLoc  []string
		wantType string
	}{
		{"invalid email", `{"email":"not-an-email","app_uuid":"` + testAppUUID + `"}`, []string{"body", "email"}, "value_error.email"},
		{"missing email", `{"app_uuid":"` + testAppUUID + `"}`, []string{"body", "email"}, "value_error.missing"},
		{"invalid uuid", `{"email":"spam@example.com","app_uuid":"nope"}`, []string{"body", "app_uuid"}, "type_error.uuid"},
		{"missing uuid", `{"email":"spam@example.com"}`, []string{"body", "app_uuid"}, "value_error.missing"},
		{"reason too long", `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `","blocked_reason":"` + longReason + `"}`, []string{"body", "blocked_reason"}, "value_error.any_str.max_length"},
		{"wrong type", `{"email":42,"app_uuid":"` + testAppUUID + `"}`, []string{"body", "email"}, "type_error"},
		{"broken json", `{"email":`, []string{"body"}, "value_error.jsondecode"},
		{"empty body", ``, []string{"body"}, "value_error.jsondecode"},
		{"trailing garbage", `{"email":"a@b.com","app_uuid":"` + testAppUUID + `"} garbage`, []string{"body"}, "value_error.jsondecode"},
		{"second object", `{"email":"a@b.com","app_uuid":"` + testAppUUID + `"}{}`, []string{"body"}, "value_error.jsondecode"},
		{"double dot in domain", `{"email":"o'brien@x..com","app_uuid":"` + testAppUUID + `"}`, []string{"body", "email"}, "value_error.email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBlacklistCreateRequest(strings.NewReader(tc.body))
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.wantLoc, verrs[0].Loc)
			assert.Equal(t, tc.wantType, verrs[0].Type)
		})
	}
}

func TestDecodeBlacklistCreateRequest_AllowsTrailingWhitespace(t *testing.T) {
	body := `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `"}` + "\n\t "

	req, err := DecodeBlacklistCreateRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "spam@example.com", req.Email)
}

func TestDecodeBlacklistCreateRequest_ReaderFailure(t *testing.T) {
	readErr := errors.New("connection reset by peer")

	_, err := DecodeBlacklistCreateRequest(iotest.ErrReader(readErr))
	require.ErrorIs(t, err, readErr)

	var verrs ValidationErrors
	assert.False(t, errors.As(err, &verrs), "reader failures must not be reported as validation errors")
}

func TestDecodeBlacklistCreateRequest_ReasonAtLimit(t *testing.T) {
	reason := strings.Repeat("a", domain.MaxBlockedReasonLength)
	body := `{"email":"spam@example.com","app_uuid":"` + testAppUUID + `","blocked_reason":"` + reason + `"}`

	req, err := DecodeBlacklistCreateRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, reason, *req.BlockedReason)
}

func TestDecodeBlacklistCreateRequest_CollectsAllErrors(t *testing.T) {
	_, err := DecodeBlacklistCreateRequest(strings.NewReader(`{"email":"bad","app_uuid":"bad"}`))

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestTimestampMarshalsMicrosecondUTC(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	at := time.Date(2024, 10, 19, 9, 30, 0, 123456789, zone)

	data, err := json.Marshal(NewTimestamp(at))
	require.NoError(t, err)
	assert.Equal(t, `"2024-10-19T14:30:00.123456Z"`, string(data))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(at.Truncate(time.Microsecond)))
}

func TestNewBlacklistCheckResponse_NotBlocked(t *testing.T) {
	data, err := json.Marshal(NewBlacklistCheckResponse("clean@x.com", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"clean@x.com","is_blocked":false,"blocked_reason":null,"blocked_at":null}`, string(data))
}

func TestNewBlacklistCheckResponse_Blocked(t *testing.T) {
	reason := "spam"
	entry := &domain.BlacklistEntry{
		Email:         "spam@x.com",
		BlockedReason: &reason,
		CreatedAt:     time.Date(2024, 10, 19, 14, 30, 0, 123456000, time.UTC),
	}

	data, err := json.Marshal(NewBlacklistCheckResponse("spam@x.com", entry))
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"spam@x.com","is_blocked":true,"blocked_reason":"spam","blocked_at":"2024-10-19T14:30:00.123456Z"}`, string(data))
}

func TestNewBlacklistCreateResponse(t *testing.T) {
	created := time.Date(2024, 10, 19, 14, 30, 0, 0, time.UTC)
	resp := NewBlacklistCreateResponse(&domain.BlacklistEntry{Email: "spam@x.com", CreatedAt: created})

	assert.Equal(t, MessageEmailAdded, resp.Message)
	assert.Equal(t, "spam@x.com", resp.Email)
	assert.True(t, resp.BlockedAt.Equal(created))
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"spam@x.com", true},
		{"first.last+tag@a.io", true},
		{"o'brien@x.com", true},
		{"user_name@mail.example.co.uk", true},
		{"a-b@x-y.com", true},
		{"no-at-sign", false},
		{"a@b", false},
		{"", false},
		{"a..b@x.com", false},
		{".a@x.com", false},
		{"a.@x.com", false},
		{"a@-x.com", false},
		{"a@x-.com", false},
		{"a@x..com", false},
		{"a@.x.com", false},
		{"a@x.com.", false},
		{"a@x.c", false},
		{"a@x.c0m", false},
		{"a@[127.0.0.1]", false},
		{`"a b"@x.com`, false},
		{"Spam <spam@x.com>", false},
		{"<spam@x.com>", false},
		{" spam@x.com", false},
		{"spam@x.com (comment)", false},
		{"a@b@x.com", false},
		{strings.Repeat("a", 65) + "@x.com", false},
		{"a@" + strings.Repeat("b", 64) + ".com", false},
		{strings.Repeat("a", 320) + "@x.com", false},
	}

	for _, tc := range cases {
		if got := IsValidEmail(tc.email); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}
