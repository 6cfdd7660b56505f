package security

import (
	"testing"
	"time"

	"bitwise74/zeropass/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestCredentials(t *testing.T) *Credentials {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.MailToken{}, model.OtpCode{}))

	return NewCredentials(db)
}

func TestMailToken_RedeemOnce(t *testing.T) {
	s := newTestCredentials(t)

	tok, err := s.IssueMailToken("a@x.com")
	require.NoError(t, err)
	require.Len(t, tok.Secret, 64, "secret should be 32 random bytes hex encoded")

	email, err := s.RedeemMailToken(tok.Secret)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)

	// The secret is consumed, a second redemption must fail
	_, err = s.RedeemMailToken(tok.Secret)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMailToken_UnknownSecret(t *testing.T) {
	s := newTestCredentials(t)

	_, err := s.RedeemMailToken("nope")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMailToken_SecretsUnique(t *testing.T) {
	s := newTestCredentials(t)

	a, err := s.IssueMailToken("a@x.com")
	require.NoError(t, err)
	b, err := s.IssueMailToken("a@x.com")
	require.NoError(t, err)

	require.NotEqual(t, a.Secret, b.Secret)

	// Both stay redeemable, outstanding tokens per email are allowed
	_, err = s.RedeemMailToken(b.Secret)
	require.NoError(t, err)
	_, err = s.RedeemMailToken(a.Secret)
	require.NoError(t, err)
}

func TestMailToken_ExpiredRowStillPresent(t *testing.T) {
	s := newTestCredentials(t)

	// Row physically exists but is one second past its expiry
	row := model.MailToken{
		Email:     "late@x.com",
		Secret:    "deadbeef",
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, s.DB.Create(&row).Error)

	_, err := s.RedeemMailToken("deadbeef")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestOtp_RedeemFlow(t *testing.T) {
	s := newTestCredentials(t)

	o, err := s.IssueOTP("+15551234567")
	require.NoError(t, err)
	require.Len(t, o.Code, 6)

	// Wrong code first, must not leak whether the phone has a live row
	_, err = s.RedeemOTP("+15551234567", "000000x")
	require.ErrorIs(t, err, ErrCodeInvalid)

	phone, err := s.RedeemOTP("+15551234567", o.Code)
	require.NoError(t, err)
	require.Equal(t, "+15551234567", phone)

	// Consumed, same code again is invalid
	_, err = s.RedeemOTP("+15551234567", o.Code)
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestOtp_NewCodeSupersedes(t *testing.T) {
	s := newTestCredentials(t)

	// Pin the first code so a random collision with the second issue
	// can't make this test flaky
	require.NoError(t, s.DB.Create(&model.OtpCode{
		Phone:     "+15550000001",
		Code:      "111111",
		ExpiresAt: time.Now().Add(OtpTTL),
	}).Error)

	second, err := s.IssueOTP("+15550000001")
	require.NoError(t, err)

	if second.Code != "111111" {
		_, err = s.RedeemOTP("+15550000001", "111111")
		require.ErrorIs(t, err, ErrCodeInvalid, "superseded code must stop working")
	}

	_, err = s.RedeemOTP("+15550000001", second.Code)
	require.NoError(t, err)
}

func TestOtp_Expired(t *testing.T) {
	s := newTestCredentials(t)

	require.NoError(t, s.DB.Create(&model.OtpCode{
		Phone:     "+15550000002",
		Code:      "222222",
		ExpiresAt: time.Now().Add(-time.Second),
	}).Error)

	_, err := s.RedeemOTP("+15550000002", "222222")
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestOtp_UnknownPhone(t *testing.T) {
	s := newTestCredentials(t)

	_, err := s.RedeemOTP("+15559999999", "123456")
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestSweepExpired(t *testing.T) {
	s := newTestCredentials(t)

	require.NoError(t, s.DB.Create(&model.MailToken{
		Email:     "old@x.com",
		Secret:    "old-secret",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)
	require.NoError(t, s.DB.Create(&model.OtpCode{
		Phone:     "+15550000003",
		Code:      "333333",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	live, err := s.IssueMailToken("new@x.com")
	require.NoError(t, err)

	n, err := s.SweepExpired()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// Idempotent, nothing left to delete
	n, err = s.SweepExpired()
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	// Live token survived the sweep
	_, err = s.RedeemMailToken(live.Secret)
	require.NoError(t, err)
}
