package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bitwise74/zeropass/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MailTokenTTL bounds how long an emailed login link stays usable
	MailTokenTTL = 10 * time.Minute
	// OtpTTL bounds how long an SMS code stays usable
	OtpTTL = 5 * time.Minute
)

var (
	// ErrTokenNotFound is returned for mail secrets that are unknown or
	// already past their expiry. The two cases are indistinguishable to
	// the caller on purpose
	ErrTokenNotFound = errors.New("token not found or expired")

	// ErrCodeInvalid is the single answer for every failed OTP attempt,
	// whether the code was wrong, expired or never issued
	ErrCodeInvalid = errors.New("invalid or expired code")
)

// redeemOutcome is only used for logging and tests. The public
// surface collapses everything into the two errors above.
type redeemOutcome int

const (
	outcomeOK redeemOutcome = iota
	outcomeNotFound
	outcomeExpired
	outcomeMismatched
)

func (o redeemOutcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeNotFound:
		return "not_found"
	case outcomeExpired:
		return "expired"
	default:
		return "mismatched"
	}
}

// Credentials persists single-use login secrets. Every secret is
// time-boxed and deleted on redemption so an intercepted link or SMS
// has a bounded exposure window.
type Credentials struct {
	DB *gorm.DB
}

func NewCredentials(db *gorm.DB) *Credentials {
	return &Credentials{DB: db}
}

// IssueMailToken stores a fresh random secret for the given email.
// Outstanding tokens for the same address stay valid, only redemption
// and expiry kill them.
func (s *Credentials) IssueMailToken(email string) (*model.MailToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token secret, %w", err)
	}

	t := &model.MailToken{
		Email:     email,
		Secret:    hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(MailTokenTTL),
	}

	if err := s.DB.Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to persist mail token, %w", err)
	}

	return t, nil
}

// IssueOTP stores a uniformly random 6-digit code for the phone. The
// row is keyed by phone so a new issuance supersedes any live code.
func (s *Credentials) IssueOTP(phone string) (*model.OtpCode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return nil, fmt.Errorf("failed to generate code, %w", err)
	}

	o := &model.OtpCode{
		Phone:     phone,
		Code:      fmt.Sprintf("%06d", n.Int64()),
		ExpiresAt: time.Now().Add(OtpTTL),
		CreatedAt: time.Now(),
	}

	err = s.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			UpdateAll: true,
		}).
		Create(o).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist code, %w", err)
	}

	return o, nil
}

// RedeemMailToken consumes a login link secret and returns the email
// it was bound to. Each secret redeems at most once. Expired rows are
// purged first so the table never accumulates garbage without a
// separate sweep job.
func (s *Credentials) RedeemMailToken(secret string) (string, error) {
	if _, err := s.SweepExpired(); err != nil {
		zap.L().Error("Failed to sweep expired tokens", zap.Error(err))
	}

	var t model.MailToken

	err := s.DB.Where("secret = ?", secret).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotFound
		}

		return "", fmt.Errorf("failed to look up mail token, %w", err)
	}

	// The sweep above already ran, but the row can still expire
	// between the purge and this read
	if time.Now().After(t.ExpiresAt) {
		zap.L().Debug("Mail token redeem rejected", zap.String("outcome", outcomeExpired.String()))
		return "", ErrTokenNotFound
	}

	// Delete by primary key and require a hit so two concurrent
	// redemptions of the same secret can't both succeed
	res := s.DB.Where("id = ?", t.ID).Delete(&model.MailToken{})
	if res.Error != nil {
		return "", fmt.Errorf("failed to consume mail token, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		zap.L().Debug("Mail token redeem rejected", zap.String("outcome", outcomeNotFound.String()))
		return "", ErrTokenNotFound
	}

	return t.Email, nil
}

// RedeemOTP consumes the live code for a phone. Wrong code, expired
// code and unknown phone all answer with ErrCodeInvalid so attackers
// learn nothing about stored state.
func (s *Credentials) RedeemOTP(phone, code string) (string, error) {
	var o model.OtpCode

	err := s.DB.Where("phone = ?", phone).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Debug("OTP redeem rejected", zap.String("outcome", outcomeNotFound.String()))
			return "", ErrCodeInvalid
		}

		return "", fmt.Errorf("failed to look up code, %w", err)
	}

	if o.Code != code {
		zap.L().Debug("OTP redeem rejected", zap.String("outcome", outcomeMismatched.String()))
		return "", ErrCodeInvalid
	}

	if time.Now().After(o.ExpiresAt) {
		zap.L().Debug("OTP redeem rejected", zap.String("outcome", outcomeExpired.String()))
		return "", ErrCodeInvalid
	}

	res := s.DB.Where("phone = ? AND code = ?", phone, code).Delete(&model.OtpCode{})
	if res.Error != nil {
		return "", fmt.Errorf("failed to consume code, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return "", ErrCodeInvalid
	}

	return o.Phone, nil
}

// SweepExpired deletes every expired mail token and OTP code. It runs
// inline on the mail redemption path and from a ticker, both share
// this implementation. Safe to call at any time.
func (s *Credentials) SweepExpired() (int64, error) {
	now := time.Now()

	mail := s.DB.Where("expires_at < ?", now).Delete(&model.MailToken{})
	if mail.Error != nil {
		return 0, fmt.Errorf("failed to sweep mail tokens, %w", mail.Error)
	}

	otp := s.DB.Where("expires_at < ?", now).Delete(&model.OtpCode{})
	if otp.Error != nil {
		return mail.RowsAffected, fmt.Errorf("failed to sweep codes, %w", otp.Error)
	}

	return mail.RowsAffected + otp.RowsAffected, nil
}
