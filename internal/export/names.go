package export

import (
	"path/filepath"
	"strings"
)

// BaseName strips the directory and the final extension of a media name.
func BaseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// RasterFileName is the flattened image name, annotated-<base>.<ext>.
func RasterFileName(mediaName string, f Format) string {
	return "annotated-" + BaseName(mediaName) + "." + f.Ext()
}

// DataFileName is the annotation data name, <base>-annotations.json.
func DataFileName(mediaName string) string {
	return BaseName(mediaName) + "-annotations.json"
}
