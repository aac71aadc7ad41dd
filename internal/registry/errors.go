package registry

import "errors"

var ErrNotRegistered = errors.New("queue is not registered in any guild")
