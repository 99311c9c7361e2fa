package gpkg

import "errors"

var ErrMissingFilePath = errors.New("gpkg: filepath is required")
