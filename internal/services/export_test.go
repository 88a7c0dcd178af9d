package services

import "time"

// SetClock overrides the clock used when issuing tokens.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}
