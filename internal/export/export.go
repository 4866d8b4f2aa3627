package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CratePack/internal/model"
)

// Formats lists the file extensions Write understands.
var Formats = []string{".csv", ".xlsx", ".pdf", ".dxf"}

// Write exports result in the format picked by the extension of path.
func Write(path string, result model.PackResult, container model.Container, settings model.Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ExportCSV(path, result)
	case ".xlsx":
		return ExportExcel(path, result, container)
	case ".pdf":
		return ExportPDF(path, result, container, settings)
	case ".dxf":
		return ExportDXF(path, result)
	default:
		return fmt.Errorf("unsupported export format %q (want one of %s)", filepath.Ext(path), strings.Join(Formats, ", "))
	}
}
