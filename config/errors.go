package config

import "errors"

var (
	ErrMalformed     = errors.New("malformed configuration")
	ErrUnknownAgent  = errors.New("unknown agent type")
	ErrArity         = errors.New("wrong number of topics")
	ErrCyclic        = errors.New("agent graph contains a cycle")
	ErrAlreadyLoaded = errors.New("configuration already created")
)
