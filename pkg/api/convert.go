package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/converter/devices"
)

// handleMIDIToSeq godoc
// @Summary Convert MIDI to .seq
// @Description Upload a MIDI file and receive a .seq file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Param device query string false "Target device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/midi2seq [post]
func (s *Server) handleMIDIToSeq(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatSeq)
}

// handleSeqToMIDI godoc
// @Summary Convert .seq to MIDI
// @Description Upload a .seq file and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".seq file to convert"
// @Param device query string false "Source device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/seq2midi [post]
func (s *Server) handleSeqToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatSeq, converter.FormatMIDI)
}

// handleMIDIToSyx godoc
// @Summary Convert MIDI to .syx
// @Description Upload a MIDI file and receive a .syx file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Param device query string false "Target device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/midi2syx [post]
func (s *Server) handleMIDIToSyx(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatSyx)
}

// handleSyxToMIDI godoc
// @Summary Convert .syx to MIDI
// @Description Upload a .syx file and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx file to convert"
// @Param device query string false "Source device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/syx2midi [post]
func (s *Server) handleSyxToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatSyx, converter.FormatMIDI)
}

// handleSeqToSyx godoc
// @Summary Convert .seq to .syx
// @Description Upload a .seq file and receive a .syx file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".seq file to convert"
// @Param device query string false "Device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/seq2syx [post]
func (s *Server) handleSeqToSyx(c *gin.Context) {
	s.handleConversion(c, converter.FormatSeq, converter.FormatSyx)
}

// handleSyxToSeq godoc
// @Summary Convert .syx to .seq
// @Description Upload a .syx file and receive a .seq file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx file to convert"
// @Param device query string false "Device (default: the server device)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/syx2seq [post]
func (s *Server) handleSyxToSeq(c *gin.Context) {
	s.handleConversion(c, converter.FormatSyx, converter.FormatSeq)
}

// readUpload returns the bytes and name of the multipart "file" field
func readUpload(c *gin.Context) ([]byte, string, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("no file uploaded: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	return data, header.Filename, nil
}

// attachmentName swaps the extension of name for the one f is written with
func attachmentName(name string, f converter.Format) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == "/" {
		base = "converted"
	}
	return base + f.Extension()
}

func (s *Server) handleConversion(c *gin.Context, from, to converter.Format) {
	data, filename, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv := s.conv
	if name := c.Query("device"); name != "" {
		device, err := devices.Lookup(name)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		conv = conv.ForDevice(device)
	}

	result, err := conv.Convert(from, to, data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", attachmentName(filename, to)))
	c.Data(http.StatusOK, to.ContentType(), result)
}
