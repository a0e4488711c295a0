package httpapi

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/adil-khursheed/mysterymessage/internal/logging"
)

// CodeSender delivers a verification code to the owner of username.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, username, code string) error
}

type logCodeSender struct {
	logger logging.Logger
}

func (s logCodeSender) SendVerificationCode(ctx context.Context, username, code string) error {
	s.logger.Info(ctx, "verification code issued", "username", username, "code", code)
	return nil
}

// generateVerifyCode returns a random six digit code.
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
