package controller

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	quiz     *service.QuizService
	sessions *service.SessionService
}

func NewQuizController(quiz *service.QuizService, sessions *service.SessionService) *QuizController {
	return &QuizController{quiz: quiz, sessions: sessions}
}

type generateQuizRequest struct {
	Target string `json:"target"`
}

type checkAnswerRequest struct {
	Answer string `json:"answer"`
}

// GET /api/quiz
func (c *QuizController) Current(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	if sess.Quiz == nil {
		respondError(ctx, util.ErrNoQuiz)
		return
	}
	util.Success(ctx, sess.Quiz.View())
}

// Generate 生成新的小测，替换会话中原有的
// POST /api/quiz
func (c *QuizController) Generate(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req generateQuizRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var result *service.QuizResult
	_, err := c.sessions.Update(ctx.Request.Context(), sess.ID, func(s *model.Session) error {
		var err error
		result, err = c.quiz.Generate(ctx.Request.Context(), s, req.Target)
		return err
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	if result.Quiz != nil {
		result.Quiz = result.Quiz.View()
	}
	util.Success(ctx, result)
}

// POST /api/quiz/items/:index/check
func (c *QuizController) Check(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "invalid item index")
		return
	}
	var req checkAnswerRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var result *service.QuizCheck
	_, err = c.sessions.Update(ctx.Request.Context(), sess.ID, func(s *model.Session) error {
		var err error
		result, err = c.quiz.Check(s, index, req.Answer)
		return err
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
