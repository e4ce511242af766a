package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/james-see/acidstep/pkg/control"
)

// ClockResponse reports the frame a clock pulse played
type ClockResponse struct {
	Played bool          `json:"played"`
	Frame  control.Frame `json:"frame"`
}

// PageRequest selects the page playback continues on
type PageRequest struct {
	Page *int `json:"page" binding:"required"`
}

// start godoc
// @Summary Start playback
// @Tags transport
// @Produce json
// @Success 200 {object} PatternResponse
// @Router /api/v1/transport/start [post]
func (s *Server) start(c *gin.Context) {
	s.seq.Start()
	c.JSON(http.StatusOK, s.patternResponse())
}

// stop godoc
// @Summary Stop playback
// @Description Stops playback and drops the gate
// @Tags transport
// @Produce json
// @Success 200 {object} PatternResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/transport/stop [post]
func (s *Server) stop(c *gin.Context) {
	if err := s.seq.Stop(); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.patternResponse())
}

// clock godoc
// @Summary Send one clock pulse
// @Description Plays the next step as a rising edge followed by a falling edge
// @Tags transport
// @Produce json
// @Success 200 {object} ClockResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/transport/clock [post]
func (s *Server) clock(c *gin.Context) {
	f, played, err := s.seq.ClockOn()
	if err == nil {
		err = s.seq.ClockOff()
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ClockResponse{Played: played, Frame: f})
}

// reset godoc
// @Summary Rewind playback
// @Description Moves playback back to step 0 without changing the pattern
// @Tags transport
// @Produce json
// @Success 200 {object} PatternResponse
// @Router /api/v1/transport/reset [post]
func (s *Server) reset(c *gin.Context) {
	s.seq.Rewind()
	c.JSON(http.StatusOK, s.patternResponse())
}

// jumpPage godoc
// @Summary Jump to another page
// @Description Moves playback to the same position on another page of 8 steps. Works while running.
// @Tags transport
// @Accept json
// @Produce json
// @Param page body PageRequest true "Target page (0-3)"
// @Success 200 {object} PatternResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/transport/page [post]
func (s *Server) jumpPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if !s.seq.JumpPage(*req.Page) {
		s.fail(c, 0, fmt.Errorf("%w: page %d", errInvalid, *req.Page))
		return
	}
	c.JSON(http.StatusOK, s.patternResponse())
}
