package importer

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bpasys/bpasys/internal/platform/tabular"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RunUpload reads the uploaded spreadsheet from the multipart "file" field
// and runs it through the engine. With dry_run=true the run previews without
// persisting. Shared by every import endpoint.
func RunUpload(c echo.Context, e *Engine) (*Report, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "arquivo ausente")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	sheet, err := tabular.ReaderFor(fh.Filename).Read(src)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var report *Report
	if c.QueryParam("dry_run") == "true" {
		report, err = e.Preview(ctx, sheet)
	} else {
		report, err = e.Import(ctx, sheet)
	}
	if err != nil {
		switch err.(type) {
		case *SchemaError:
			return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case *ReferenceError:
			return nil, echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return report, nil
}

// WriteTemplateXLSX streams the schema's blank upload workbook.
func WriteTemplateXLSX(c echo.Context, s *Schema, filename string) error {
	buf, err := tabular.WriteTemplate(s.TemplateColumns())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, XLSXContentType, buf.Bytes())
}

// WriteReportXLSX streams the report's rejected rows as a workbook.
func WriteReportXLSX(c echo.Context, s *Schema, r *Report, filename string) error {
	headers, rows := r.ExportRows(s)
	buf, err := tabular.WriteErrorReport(headers, rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, XLSXContentType, buf.Bytes())
}
