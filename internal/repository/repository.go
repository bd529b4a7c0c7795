package repository

import (
	"errors"

	"github.com/pickstudio/chat-backend/pkg/xredis"
)

func isNil(err error) bool {
	return errors.Is(err, xredis.ErrNil)
}
