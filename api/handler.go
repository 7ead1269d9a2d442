// Package api - HTTP handlers for quoting and pricing administration
// Handlers wrap the engine and the store - they contain NO pricing logic.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanquote/adapters/export"
	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleCalculate handles POST /pricing/calculate
func (s *Server) handleCalculate(c *gin.Context) {
	var req types.QuoteRequest
	if !s.bind(c, &req) {
		return
	}

	quote, err := s.engine.Quote(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, false)
		return
	}

	setPricingVersion(c, quote.Version)
	c.JSON(http.StatusOK, quote.Result)
}

// handleCalculatePDF handles POST /pricing/calculate/pdf
func (s *Server) handleCalculatePDF(c *gin.Context) {
	var req types.QuoteRequest
	if !s.bind(c, &req) {
		return
	}

	quote, err := s.engine.Quote(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, false)
		return
	}

	pdf, err := export.QuotePDF(export.QuoteDocument{
		Company: s.company,
		Issued:  s.now(),
		Quote:   quote,
	})
	if err != nil {
		s.writeError(c, errors.Internal("render quote PDF", err), false)
		return
	}

	setPricingVersion(c, quote.Version)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%s.pdf"`, quote.Category))
	c.Data(http.StatusOK, contentTypePDF, pdf)
}

// handleGetSettings handles GET /pricing/settings
func (s *Server) handleGetSettings(c *gin.Context) {
	snap := s.store.Snapshot()
	setPricingVersion(c, snap.Version())
	c.JSON(http.StatusOK, snap.Settings())
}

// handlePutSettings handles PUT /pricing/settings
func (s *Server) handlePutSettings(c *gin.Context) {
	var settings pricing.Settings
	if !s.bind(c, &settings) {
		return
	}

	snap, err := s.store.ReplaceSettings(c.Request.Context(), settings)
	if err != nil {
		s.rejectWrite(c, "settings", err)
		return
	}

	setPricingVersion(c, snap.Version())
	c.JSON(http.StatusOK, snap.Settings())
}

// handlePutSection handles PUT /pricing/settings/:section
func (s *Server) handlePutSection(c *gin.Context) {
	section, err := pricing.ParseSection(c.Param("section"))
	if err != nil {
		s.writeError(c, err, true)
		return
	}

	ctx := c.Request.Context()
	var snap *pricing.Snapshot
	switch section {
	case pricing.SectionPV:
		var cfg pricing.PVConfig
		if !s.bind(c, &cfg) {
			return
		}
		snap, err = s.store.ReplacePV(ctx, cfg)
	case pricing.SectionStairwell:
		var cfg pricing.StairwellConfig
		if !s.bind(c, &cfg) {
			return
		}
		snap, err = s.store.ReplaceStairwell(ctx, cfg)
	case pricing.SectionGlass:
		var cfg pricing.GlassConfig
		if !s.bind(c, &cfg) {
			return
		}
		snap, err = s.store.ReplaceGlass(ctx, cfg)
	case pricing.SectionMaintenance:
		var cfg pricing.MaintenanceConfig
		if !s.bind(c, &cfg) {
			return
		}
		snap, err = s.store.ReplaceMaintenance(ctx, cfg)
	default:
		s.writeError(c, errors.InvalidInput("section %q is edited through /pricing/cities", section), true)
		return
	}
	if err != nil {
		s.rejectWrite(c, string(section), err)
		return
	}

	setPricingVersion(c, snap.Version())
	c.JSON(http.StatusOK, snap.Settings())
}

// handleListCities handles GET /pricing/cities
func (s *Server) handleListCities(c *gin.Context) {
	snap := s.store.Snapshot()
	setPricingVersion(c, snap.Version())
	c.JSON(http.StatusOK, snap.Cities())
}

// handleCreateCity handles POST /pricing/cities
func (s *Server) handleCreateCity(c *gin.Context) {
	var city pricing.CityPricing
	if !s.bind(c, &city) {
		return
	}

	created, err := s.store.CreateCity(c.Request.Context(), city)
	if err != nil {
		s.rejectWrite(c, string(pricing.SectionCities), err)
		return
	}

	setPricingVersion(c, s.store.Snapshot().Version())
	c.JSON(http.StatusOK, created)
}

// handleUpdateCity handles PUT /pricing/cities/:id
func (s *Server) handleUpdateCity(c *gin.Context) {
	var city pricing.CityPricing
	if !s.bind(c, &city) {
		return
	}

	updated, err := s.store.UpdateCity(c.Request.Context(), c.Param("id"), city)
	if err != nil {
		s.rejectWrite(c, string(pricing.SectionCities), err)
		return
	}

	setPricingVersion(c, s.store.Snapshot().Version())
	c.JSON(http.StatusOK, updated)
}

// handleDeleteCity handles DELETE /pricing/cities/:id
func (s *Server) handleDeleteCity(c *gin.Context) {
	if err := s.store.DeleteCity(c.Request.Context(), c.Param("id")); err != nil {
		s.rejectWrite(c, string(pricing.SectionCities), err)
		return
	}

	setPricingVersion(c, s.store.Snapshot().Version())
	c.JSON(http.StatusOK, DeleteResponse{OK: true})
}

// handleExportXLSX handles GET /pricing/export.xlsx
func (s *Server) handleExportXLSX(c *gin.Context) {
	snap := s.store.Snapshot()
	data, err := export.PriceListXLSX(snap)
	if err != nil {
		s.writeError(c, errors.Internal("render price list", err), false)
		return
	}

	setPricingVersion(c, snap.Version())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="pricelist-v%d.xlsx"`, snap.Version()))
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    s.now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(c *gin.Context) {
	snap := s.store.Snapshot()
	setPricingVersion(c, snap.Version())
	c.JSON(http.StatusOK, VersionResponse{
		Version:          s.version,
		Engine:           "cleanquote",
		APIVersion:       "v1",
		PricingVersion:   snap.Version(),
		ContentHash:      snap.ContentHash().Hex(),
		PricingSource:    snap.Source().String(),
		PricingUpdatedAt: snap.CreatedAt().Format(time.RFC3339),
	})
}

// bind decodes the JSON body into dst, answering 400 on failure
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.writeError(c, errors.Wrap(errors.TypeInvalidInput, "invalid request body", err), false)
		return false
	}
	return true
}

// rejectWrite answers a failed configuration write and counts it
func (s *Server) rejectWrite(c *gin.Context, section string, err error) {
	s.metrics.ObserveRejectedWrite(section, err)
	s.writeError(c, err, true)
}

// writeError answers with the standard error body. write selects the status
// for configuration errors: a rejected write is the client's fault, a broken
// configuration found while quoting is not.
func (s *Server) writeError(c *gin.Context, err error, write bool) {
	errType := errors.TypeOf(err)
	status := statusFor(errType, write)

	body := ErrorBody{Code: string(errType), Message: err.Error()}
	if e, ok := errors.As(err); ok {
		body.Message = e.Message
		if e.Cause != nil && errType != errors.TypeInternal {
			body.Message += ": " + e.Cause.Error()
		}
		body.Details = e.Context
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", body.Code),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func statusFor(t errors.Type, write bool) int {
	switch t {
	case errors.TypeInvalidInput, errors.TypeUnsupportedCategory, errors.TypeUnknownExtra:
		return http.StatusBadRequest
	case errors.TypeConfiguration:
		if write {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func setPricingVersion(c *gin.Context, version uint64) {
	c.Header(PricingVersionHeader, strconv.FormatUint(version, 10))
}
