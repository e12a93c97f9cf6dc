package roster

import "errors"

var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrPINRequired          = errors.New("no lock PIN configured")
	ErrPINMismatch          = errors.New("lock PIN does not match")
	ErrInvalidFolder        = errors.New("invalid folder")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// IsNotFound reports whether err means the target of an operation vanished.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChatNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
