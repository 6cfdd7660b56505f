package service

import (
	"time"

	"bitwise74/zeropass/security"

	"go.uber.org/zap"
)

// SweepLoop periodically deletes expired login tokens and codes. The
// mail redemption path already sweeps inline, this catches stores
// where nobody redeems for a while.
func SweepLoop(t time.Duration, creds *security.Credentials) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token sweep attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			n, err := creds.SweepExpired()
			if err != nil {
				zap.L().Error("Failed to sweep expired tokens", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Swept expired tokens", zap.Int64("deleted", n))
			}
		}
	}()
}
