//go:build windows

package runner

import "errors"

func start(argv []string, cols, rows uint16) (process, error) {
	return nil, errors.ErrUnsupported
}
