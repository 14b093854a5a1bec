package service

import "errors"

var (
	ErrMissingID          = errors.New("missing node id")
	ErrNodeUnknown        = errors.New("node unknown")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownSetting     = errors.New("unknown setting")
	ErrInvalidSetting     = errors.New("invalid setting value")
)
