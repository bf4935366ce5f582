package recovery

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"syscall"

	"github.com/jvanloock/dupdirs/pkg/models"
)

// Classify maps a filesystem error onto the recovery taxonomy. It is
// a pure function; accumulation happens in the Policy.
func Classify(err error) models.ErrorKind {
	if err == nil {
		return models.KindUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return models.KindCancelled
	}
	if errors.Is(err, fs.ErrPermission) {
		return models.KindAccessDenied
	}
	if errors.Is(err, fs.ErrNotExist) {
		return models.KindNotFound
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENAMETOOLONG:
			return models.KindPathTooLong
		case syscall.EBUSY, syscall.EAGAIN, syscall.ETXTBSY:
			return models.KindLocked
		case syscall.EMFILE, syscall.ENFILE, syscall.ENOMEM, syscall.ENOSPC:
			return models.KindResourceConstrained
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.ETIMEDOUT, syscall.ECONNREFUSED:
			return models.KindNetworkUnreachable
		}
	}

	// Last resort: match message fragments from wrapped platform errors.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "used by another process") || strings.Contains(msg, "file is locked"):
		return models.KindLocked
	case strings.Contains(msg, "name too long") || strings.Contains(msg, "path too long"):
		return models.KindPathTooLong
	case strings.Contains(msg, "network"):
		return models.KindNetworkUnreachable
	}

	return models.KindUnknown
}
