package service

import (
	"context"
	"edu_translator_backend/internal/util"
	"errors"
	"testing"
)

const quizReply = `{"items":[
{"type":"mcq","question":"Pick the collocation","options":["make rain","heavy rain","strong rain","big rain"],"answer":"B","explain":"heavy rain"},
{"type":"mcq","question":"Meaning?","options":["a lot of rain","no rain","snow","wind"],"answer":"a lot of rain","explain":"x"},
{"type":"fitb","question":"___ rain fell all night.","answer":"Heavy","explain":"y"}]}`

func TestQuizService_Generate(t *testing.T) {
	llm := &fakeLLM{replies: []string{quizReply}}
	svc := NewQuizService(llm)
	sess := newStudent("G1")

	result, err := svc.Generate(context.Background(), sess, " heavy rain ")
	if err != nil {
		t.Fatalf("生成小测失败: %v", err)
	}
	if result.Quiz == nil || result.Quiz.Total != 3 || sess.Quiz != result.Quiz {
		t.Fatalf("应生成 3 道题并写入会话，实际: %+v", result)
	}
	if sess.Quiz.Target != "heavy rain" {
		t.Errorf("目标词应去掉首尾空白，实际 %q", sess.Quiz.Target)
	}
	if llm.opts[0].Temperature != quizTemperature || !llm.opts[0].JSON {
		t.Errorf("小测应以低温度请求 JSON，实际 %+v", llm.opts[0])
	}
}

func TestQuizService_Generate_ParseFailureKeepsOldQuiz(t *testing.T) {
	llm := &fakeLLM{replies: []string{quizReply, "1) What is rain? ..."}}
	svc := NewQuizService(llm)
	sess := newStudent("G1")
	_, _ = svc.Generate(context.Background(), sess, "rain")
	old := sess.Quiz

	result, err := svc.Generate(context.Background(), sess, "snow")
	if err != nil {
		t.Fatalf("解析失败不应返回错误: %v", err)
	}
	if result.Raw == "" || result.Warning == "" || result.Quiz != nil {
		t.Errorf("解析失败时应返回原文，实际: %+v", result)
	}
	if sess.Quiz != old {
		t.Errorf("解析失败时不应替换已有小测")
	}
}

func TestQuizService_Generate_Failure(t *testing.T) {
	svc := NewQuizService(&fakeLLM{err: errors.New("down")})

	result, err := svc.Generate(context.Background(), newStudent("G1"), "rain")
	if err != nil || !IsPlaceholder(result.Raw) {
		t.Errorf("失败时应返回占位文本，实际 %+v, %v", result, err)
	}
}

func TestQuizService_Check_ScoresOnce(t *testing.T) {
	svc := NewQuizService(&fakeLLM{replies: []string{quizReply}})
	sess := newStudent("G1")
	_, _ = svc.Generate(context.Background(), sess, "rain")

	res, err := svc.Check(sess, 0, "heavy rain")
	if err != nil || !res.Correct || res.Score != 1 {
		t.Fatalf("选项文本应判对并计分，实际 %+v, %v", res, err)
	}
	res, _ = svc.Check(sess, 0, "B")
	if !res.Correct || res.Score != 1 {
		t.Errorf("同一题重复检查不应再次计分，实际 %+v", res)
	}

	res, _ = svc.Check(sess, 2, "wrong")
	if res.Correct || res.Score != 1 || res.Answer != "Heavy" {
		t.Errorf("答错不计分并返回正确答案，实际 %+v", res)
	}
	res, _ = svc.Check(sess, 2, "heavy")
	if !res.Correct || res.Score != 1 {
		t.Errorf("第一次检查之后改对也不再计分，实际 %+v", res)
	}
}

func TestQuizService_Check_Errors(t *testing.T) {
	svc := NewQuizService(&fakeLLM{replies: []string{quizReply}})
	sess := newStudent("G1")

	if _, err := svc.Check(sess, 0, "x"); !errors.Is(err, util.ErrNoQuiz) {
		t.Errorf("期望 ErrNoQuiz，实际: %v", err)
	}
	_, _ = svc.Generate(context.Background(), sess, "rain")
	if _, err := svc.Check(sess, 3, "x"); !errors.Is(err, util.ErrQuizItemOutOfRange) {
		t.Errorf("期望 ErrQuizItemOutOfRange，实际: %v", err)
	}
}
