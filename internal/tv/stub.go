// Package tv is a placeholder for direct LG webOS control. Commands are
// accepted and logged but not sent anywhere.
package tv

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Stub accepts every command.
type Stub struct{}

// NewStub creates a stub controller.
func NewStub() *Stub {
	return &Stub{}
}

// Send logs the command and reports success.
func (s *Stub) Send(_ context.Context, command string) error {
	log.Info().Str("command", command).Msg("TV command received (stub)")
	return nil
}
