package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	tutor *service.TutorService
}

func NewTutorController(tutor *service.TutorService) *TutorController {
	return &TutorController{tutor: tutor}
}

type textRequest struct {
	Text string `json:"text"`
}

type lemmaRequest struct {
	Lemma string `json:"lemma"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

// Translate 直译与意译对比
// POST /api/translate
func (c *TutorController) Translate(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req textRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.tutor.Translate(ctx.Request.Context(), sess, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// POST /api/translate/back
func (c *TutorController) BackTranslate(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req textRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.tutor.BackTranslate(ctx.Request.Context(), sess, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// POST /api/translate/errors
func (c *TutorController) DetectErrors(ctx *gin.Context) {
	var req service.DetectErrorsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	report, err := c.tutor.DetectErrors(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"report": report})
}

// POST /api/explain
func (c *TutorController) Explain(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req lemmaRequest
	if !bindJSON(ctx, &req) {
		return
	}

	text, err := c.tutor.Explain(ctx.Request.Context(), sess, req.Lemma)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lemma": req.Lemma, "explanation": text})
}

// ExplainStream 以 SSE 逐段返回讲解
// GET /api/explain/stream?lemma=...
func (c *TutorController) ExplainStream(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}

	stream, errChan, err := c.tutor.ExplainStream(ctx.Request.Context(), sess, ctx.Query("lemma"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// POST /api/collocations
func (c *TutorController) Collocations(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req service.CollocationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	text, err := c.tutor.Collocations(ctx.Request.Context(), sess, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"key": req.Key, "idiom": req.Idiom, "text": text})
}

// POST /api/challenges
func (c *TutorController) Challenge(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req topicRequest
	if !bindJSON(ctx, &req) {
		return
	}

	text, err := c.tutor.Challenge(ctx.Request.Context(), sess, req.Topic)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"topic": req.Topic, "challenge": text})
}
