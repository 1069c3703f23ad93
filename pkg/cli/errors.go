package cli

import "errors"

// ErrInvalidDeliverTarget is returned when deliver gets neither or both of --id and --pending
var ErrInvalidDeliverTarget = errors.New("invalid deliver target")
