package main

import "github.com/thunderpresence/thunderpresence/internal/paths"

// DataPaths aliases [paths.DataDir] into the main package.
type DataPaths = paths.DataDir
