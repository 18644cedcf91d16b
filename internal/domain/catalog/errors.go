package catalog

import "errors"

var (
	ErrUnknownPackage = errors.New("unknown package")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
