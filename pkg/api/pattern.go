package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/engine"
)

// StepResponse is the JSON form of one step
type StepResponse struct {
	Index           int    `json:"index"`
	Pitch           int    `json:"pitch"`
	Gate            string `json:"gate"`
	Accent          bool   `json:"accent"`
	Slide           bool   `json:"slide"`
	Transpose       string `json:"transpose"`
	Reset           bool   `json:"reset"`
	DeterminedPitch int    `json:"determined_pitch"`
}

// PatternResponse is the JSON form of the loaded pattern
type PatternResponse struct {
	Name        string         `json:"name"`
	Tempo       float64        `json:"tempo"`
	CurrentStep int            `json:"current_step"`
	LoopLength  int            `json:"loop_length"`
	Running     bool           `json:"running"`
	Steps       []StepResponse `json:"steps"`
}

// StepPatch lists the step fields to change. Omitted fields are kept.
// A pitch of -1 clears the explicit pitch.
type StepPatch struct {
	Pitch     *int    `json:"pitch"`
	Gate      *string `json:"gate"`
	Accent    *bool   `json:"accent"`
	Slide     *bool   `json:"slide"`
	Transpose *string `json:"transpose"`
	Reset     *bool   `json:"reset"`
}

// apply returns s with the patch applied, or errInvalid
func (p StepPatch) apply(s engine.Step) (engine.Step, error) {
	if p.Pitch != nil {
		if *p.Pitch < int(engine.PitchRest) || *p.Pitch > engine.MaxPitchValue {
			return s, fmt.Errorf("%w: pitch %d out of range", errInvalid, *p.Pitch)
		}
		s.Pitch = int8(*p.Pitch)
	}
	if p.Gate != nil {
		g, err := engine.ParseGate(*p.Gate)
		if err != nil {
			return s, fmt.Errorf("%w: %v", errInvalid, err)
		}
		s.Gate = g
	}
	if p.Transpose != nil {
		t, err := engine.ParseTranspose(*p.Transpose)
		if err != nil {
			return s, fmt.Errorf("%w: %v", errInvalid, err)
		}
		s.Transpose = t
	}
	if p.Accent != nil {
		s.Accent = *p.Accent
	}
	if p.Slide != nil {
		s.Slide = *p.Slide
	}
	if p.Reset != nil {
		s.Reset = *p.Reset
	}
	return s, nil
}

// CursorRequest moves the playback cursor
type CursorRequest struct {
	Step *int `json:"step" binding:"required"`
}

func stepResponse(e *engine.Engine, i int) StepResponse {
	s := e.StepAt(i)
	return StepResponse{
		Index:           i,
		Pitch:           int(s.Pitch),
		Gate:            s.Gate.String(),
		Accent:          s.Accent,
		Slide:           s.Slide,
		Transpose:       s.Transpose.String(),
		Reset:           s.Reset,
		DeterminedPitch: int(e.DeterminedPitch(i)),
	}
}

func (s *Server) patternResponse() PatternResponse {
	name, tempo := s.meta()
	resp := PatternResponse{
		Name:    name,
		Tempo:   tempo,
		Running: s.seq.Running(),
		Steps:   make([]StepResponse, 0, engine.MaxPatternLength),
	}
	s.seq.View(func(e *engine.Engine) {
		resp.CurrentStep = e.CurrentStep()
		resp.LoopLength = e.LoopLength()
		for i := 0; i < engine.MaxPatternLength; i++ {
			resp.Steps = append(resp.Steps, stepResponse(e, i))
		}
	})
	return resp
}

// parseIndex reads the :index path parameter as a step number
func parseIndex(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || !engine.InRange(i) {
		return 0, fmt.Errorf("%w: step index %q", errInvalid, c.Param("index"))
	}
	return i, nil
}

// getPattern godoc
// @Summary Get the pattern
// @Description Returns every step, the cursor and the transport state
// @Tags pattern
// @Produce json
// @Success 200 {object} PatternResponse
// @Router /api/v1/pattern [get]
func (s *Server) getPattern(c *gin.Context) {
	c.JSON(http.StatusOK, s.patternResponse())
}

// clearPattern godoc
// @Summary Clear the pattern
// @Description Resets every step to a rest and rewinds the cursor
// @Tags pattern
// @Produce json
// @Success 200 {object} PatternResponse
// @Router /api/v1/pattern [delete]
func (s *Server) clearPattern(c *gin.Context) {
	s.seq.Clear()
	c.JSON(http.StatusOK, s.patternResponse())
}

// exportPattern godoc
// @Summary Export the pattern
// @Description Encodes the pattern as MIDI, .seq or .syx
// @Tags pattern
// @Produce application/octet-stream
// @Param format query string false "midi, seq or syx (default: midi)"
// @Success 200 {file} binary
// @Failure 422 {object} map[string]string
// @Router /api/v1/pattern/export [get]
func (s *Server) exportPattern(c *gin.Context) {
	format := converter.ParseFormat(c.DefaultQuery("format", "midi"))
	if format == converter.FormatUnknown {
		s.fail(c, 0, fmt.Errorf("%w: format %q", errInvalid, c.Query("format")))
		return
	}

	name, tempo := s.meta()
	steps, _ := s.seq.Snapshot()
	data, err := s.conv.Generate(format, &converter.Pattern{Name: name, Tempo: tempo, Steps: steps})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", attachmentName(name, format)))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// importPattern godoc
// @Summary Import a pattern
// @Description Replaces the pattern with an uploaded MIDI, .seq or .syx file
// @Tags pattern
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Pattern file"
// @Param format query string false "Override format detection"
// @Success 200 {object} PatternResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/pattern/import [post]
func (s *Server) importPattern(c *gin.Context) {
	data, filename, err := readUpload(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	format := converter.ParseFormat(c.Query("format"))
	if format == converter.FormatUnknown {
		format = converter.DetectFormat(filename)
	}
	if format == converter.FormatUnknown {
		format = converter.DetectFormatFromContent(data)
	}

	pattern, err := s.conv.Parse(format, data)
	if err != nil {
		s.fail(c, 0, fmt.Errorf("%w: %v", errInvalid, err))
		return
	}
	if err := s.applyPattern(pattern); err != nil {
		s.fail(c, 0, err)
		return
	}
	s.logger.Info("api: pattern imported", "file", filename, "format", format, "loop", pattern.Steps.LoopLength())

	c.JSON(http.StatusOK, s.patternResponse())
}

// getStep godoc
// @Summary Get a step
// @Tags steps
// @Produce json
// @Param index path int true "Step index (0-31)"
// @Success 200 {object} StepResponse
// @Failure 422 {object} map[string]string
// @Router /api/v1/steps/{index} [get]
func (s *Server) getStep(c *gin.Context) {
	i, err := parseIndex(c)
	if err != nil {
		s.fail(c, 0, err)
		return
	}
	var resp StepResponse
	s.seq.View(func(e *engine.Engine) { resp = stepResponse(e, i) })
	c.JSON(http.StatusOK, resp)
}

// patchStep godoc
// @Summary Edit a step
// @Description Changes the given fields of one step. Nothing changes when any field is invalid.
// @Tags steps
// @Accept json
// @Produce json
// @Param index path int true "Step index (0-31)"
// @Param step body StepPatch true "Fields to change"
// @Success 200 {object} StepResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/steps/{index} [patch]
func (s *Server) patchStep(c *gin.Context) {
	i, err := parseIndex(c)
	if err != nil {
		s.fail(c, 0, err)
		return
	}

	var patch StepPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	var resp StepResponse
	s.seq.Edit(func(e *engine.Engine) {
		var next engine.Step
		next, err = patch.apply(e.StepAt(i))
		if err != nil {
			return
		}
		e.SetPitch(i, next.Pitch)
		e.SetGate(i, next.Gate)
		e.SetAccent(i, next.Accent)
		e.SetSlide(i, next.Slide)
		e.SetTranspose(i, next.Transpose)
		e.SetReset(i, next.Reset)
		resp = stepResponse(e, i)
	})
	if err != nil {
		s.fail(c, 0, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// setCursor godoc
// @Summary Move the cursor
// @Description Moves the playback cursor while the transport is stopped
// @Tags transport
// @Accept json
// @Produce json
// @Param cursor body CursorRequest true "Target step"
// @Success 200 {object} PatternResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/cursor [put]
func (s *Server) setCursor(c *gin.Context) {
	var req CursorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if !engine.InRange(*req.Step) {
		s.fail(c, 0, fmt.Errorf("%w: step %d", errInvalid, *req.Step))
		return
	}
	if !s.seq.Scrub(*req.Step) {
		s.fail(c, http.StatusConflict, errors.New("cannot move the cursor while running"))
		return
	}
	c.JSON(http.StatusOK, s.patternResponse())
}

// getSettings godoc
// @Summary Get output settings
// @Tags settings
// @Produce json
// @Success 200 {object} control.Settings
// @Router /api/v1/settings [get]
func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.seq.Settings())
}

// putSettings godoc
// @Summary Replace output settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body control.Settings true "Settings"
// @Success 200 {object} control.Settings
// @Failure 400 {object} map[string]string
// @Router /api/v1/settings [put]
func (s *Server) putSettings(c *gin.Context) {
	settings := s.seq.Settings()
	if err := c.ShouldBindJSON(&settings); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.seq.SetSettings(settings)
	c.JSON(http.StatusOK, settings)
}

// applyPattern loads p into the sequencer and records its metadata
func (s *Server) applyPattern(p *converter.Pattern) error {
	if !s.seq.Load(p.Steps) {
		return fmt.Errorf("%w: pattern contains out-of-range steps", errInvalid)
	}
	s.SetMeta(p.Name, p.Tempo)
	return nil
}
