package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

// errorResponse is the uniform error body for all endpoints
type errorResponse struct {
	Error string `json:"error"`
}

// handleHealth reports server status and the loaded ruleset
func (s *Server) handleHealth(c *gin.Context) {
	response := gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().UTC(),
		"rules_version": s.repo.Version(),
		"rules":         s.repo.Stats(),
	}
	if s.cache != nil {
		response["cache"] = s.cache.stats()
	}
	c.JSON(http.StatusOK, response)
}

// handleAssess computes one disability assessment
func (s *Server) handleAssess(c *gin.Context) {
	var req domain.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"conditions": len(req.Conditions),
	})

	var cacheKey string
	if s.cache != nil {
		key, err := s.cache.key(&req)
		if err == nil {
			cacheKey = key
			if result, ok := s.cache.get(key); ok {
				log.Debug("Assessment served from cache")
				c.JSON(http.StatusOK, result)
				return
			}
		}
	}

	result, err := s.engine.Assess(&req)
	if err != nil {
		status := statusForError(err)
		log.WithError(err).WithField("status", status).Warn("Assessment rejected")
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	if s.cache != nil && cacheKey != "" {
		s.cache.put(cacheKey, result)
	}

	log.WithField("final", result.Final).Info("Assessment computed")
	c.JSON(http.StatusOK, result)
}

// handleListChapters lists the chapters of the loaded ruleset
func (s *Server) handleListChapters(c *gin.Context) {
	chapters := s.repo.Chapters()

	summaries := make([]gin.H, 0, len(chapters))
	for _, chapter := range chapters {
		tables := make([]gin.H, 0, len(chapter.Tables))
		for _, table := range chapter.Tables {
			tables = append(tables, gin.H{
				"table": table.Table,
				"title": table.Title,
				"cells": len(table.Cells),
			})
		}
		summaries = append(summaries, gin.H{
			"chapter": chapter.Chapter,
			"title":   chapter.Title,
			"tables":  tables,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"rules_version": s.repo.Version(),
		"chapters":      summaries,
	})
}

// handleGetTable returns one rule table with its full cell listing
func (s *Server) handleGetTable(c *gin.Context) {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "chapter must be an integer"})
		return
	}
	table, err := strconv.Atoi(c.Param("table"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "table must be an integer"})
		return
	}

	ruleTable, err := s.repo.Table(chapter, table)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	chapterTitle, err := s.repo.ChapterTitle(chapter, table)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chapter":       chapter,
		"chapter_title": chapterTitle,
		"table":         ruleTable,
	})
}

// statusForError maps the engine's typed errors onto HTTP statuses.
// Binding and lookup defects are the caller's fault; an ambiguous overlap
// is a conflict in the claim itself; an out-of-band MI means the loaded
// rule tables cannot serve the request.
func statusForError(err error) int {
	var (
		tableErr   *domain.UnknownTableError
		ratingErr  *domain.InvalidRatingError
		bindingErr *domain.InvalidBindingError
		overlapErr *domain.AmbiguousOverlapError
		bandErr    *domain.OutOfBandError
	)

	switch {
	case errors.As(err, &overlapErr):
		return http.StatusConflict
	case errors.As(err, &tableErr), errors.As(err, &ratingErr), errors.As(err, &bindingErr):
		return http.StatusBadRequest
	case errors.As(err, &bandErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
