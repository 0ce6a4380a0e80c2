package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"errors"
	"strings"
	"testing"
)

func TestFeedbackService_Classify_Structured(t *testing.T) {
	llm := &fakeLLM{replies: []string{"```json\n" + classifyJSON + "\n```"}}
	svc := NewFeedbackService(llm)

	fb := svc.Classify(context.Background(), "source", "student text", model.English)
	if fb.Degraded || fb.Warning != "" {
		t.Fatalf("应解析为结构化反馈，实际: %+v", fb)
	}
	if fb.Report == nil || len(fb.Report.Findings) != 1 {
		t.Fatalf("期望一条错误发现，实际: %+v", fb.Report)
	}
	if !strings.Contains(fb.Text, "### COLLOCATION") || !strings.Contains(fb.Text, "Good work.") {
		t.Errorf("展示文本应包含分类标题与总结，实际:\n%s", fb.Text)
	}
	if !llm.opts[0].JSON {
		t.Errorf("错误分析应请求 JSON 输出")
	}
	if !strings.Contains(llm.prompts[0], model.ErrorIdiomaticity) {
		t.Errorf("提示词应列出错误类别")
	}
}

func TestFeedbackService_Classify_Unstructured(t *testing.T) {
	svc := NewFeedbackService(&fakeLLM{replies: []string{"LEXICAL CHOICE: use 'reply' instead."}})

	fb := svc.Classify(context.Background(), "s", "t", model.Arabic)
	if fb.Degraded {
		t.Errorf("能拿到文本时不应标记为占位")
	}
	if fb.Report != nil || fb.Text != "LEXICAL CHOICE: use 'reply' instead." || fb.Warning == "" {
		t.Errorf("解析失败时应回退为原文并给出提示，实际: %+v", fb)
	}
}

func TestFeedbackService_Classify_Failure(t *testing.T) {
	svc := NewFeedbackService(&fakeLLM{err: errors.New("boom")})

	fb := svc.Classify(context.Background(), "s", "t", model.Arabic)
	if !fb.Degraded || !IsPlaceholder(fb.Text) || !strings.Contains(fb.Text, "boom") {
		t.Errorf("失败时应返回包含原因的占位文本，实际: %+v", fb)
	}
}

func TestFeedbackService_Translate(t *testing.T) {
	llm := &fakeLLM{replies: []string{"مرحبا"}}
	svc := NewFeedbackService(llm)

	out, ok := svc.Translate(context.Background(), "Hello", model.English, model.Arabic)
	if !ok || out != "مرحبا" {
		t.Errorf("期望翻译结果，实际 %q ok=%v", out, ok)
	}
	if !strings.Contains(llm.prompts[0], "from English to Arabic") {
		t.Errorf("提示词应包含作业的语言方向，实际: %s", llm.prompts[0])
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		A string `json:"a"`
	}
	if err := decodeJSON("Sure! Here it is: {\"a\": \"x\"} Hope this helps.", &v); err != nil || v.A != "x" {
		t.Errorf("应忽略前后多余文字，实际 %+v, %v", v, err)
	}
	if err := decodeJSON("no json here", &v); err == nil {
		t.Errorf("没有 JSON 对象时应报错")
	}
}
