package models

import "errors"

// ErrRecordNotFound is returned by stores when an id does not exist.
var ErrRecordNotFound = errors.New("record not found")
