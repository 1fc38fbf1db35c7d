package parse

import "errors"

var ErrSyntax = errors.New("json syntax error")
