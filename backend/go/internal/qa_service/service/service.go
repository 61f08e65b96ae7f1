package service

import (
	"context"
	"errors"
	"fmt"

	"llm_relay/backend/go/internal/llm"
	"llm_relay/backend/go/internal/models"
	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/pkg/logger"
)

// ErrProvider matches every failure of the outbound completion call.
var ErrProvider = errors.New("provider error")

// ProviderError wraps a failed call to the LLM provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// QAService 负责把问题与（可选的）上传文件组装成提示，并向 LLM 提供商发起一次调用。
// 它不保存任何跨请求的状态，可被多个请求并发使用。
type QAService struct {
	log        *logger.Logger
	llm        llm.LLM
	normalizer *normalizer.Normalizer
}

// NewQAService creates a QAService bound to one provider client.
func NewQAService(client llm.LLM, norm *normalizer.Normalizer, log *logger.Logger) *QAService {
	if norm == nil {
		norm = normalizer.New()
	}
	return &QAService{log: log, llm: client, normalizer: norm}
}

// Normalizer 返回服务使用的归一化器。
func (s *QAService) Normalizer() *normalizer.Normalizer { return s.normalizer }

// Ask 回答一个问题。upload 为 nil 表示请求未携带文件。
// 归一化错误原样返回（*normalizer.Error），提供商错误包装为 *ProviderError。
func (s *QAService) Ask(ctx context.Context, question string, upload *normalizer.Upload) (*models.QAResponse, error) {
	payload := map[string]interface{}{
		"provider":        s.llm.Name(),
		"question_length": len([]rune(question)),
		"has_file":        upload != nil,
	}

	var fileText string
	if upload != nil {
		res, err := s.normalizer.Normalize(*upload)
		if err != nil {
			s.log.WithPayload(payload).Warn(fmt.Sprintf("upload %q rejected: %v", upload.Filename, err))
			return nil, err
		}
		fileText = res.Text
		payload["extension"] = res.Extension
		payload["detected_mime"] = res.DetectedMIME
		payload["truncated"] = res.Truncated
		if res.MIMEMismatch {
			s.log.WithPayload(payload).Warn(fmt.Sprintf("upload %q looks like %s, not .%s", upload.Filename, res.DetectedMIME, res.Extension))
		}
	}

	prompt := BuildPrompt(question, fileText, upload != nil)
	answer, err := llm.Generate(ctx, s.llm, prompt)
	if err != nil {
		s.log.WithPayload(payload).Error(fmt.Sprintf("provider call failed: %v", err))
		return nil, &ProviderError{Provider: s.llm.Name(), Err: err}
	}

	s.log.WithPayload(payload).Info("question answered")
	return &models.QAResponse{Question: question, Answer: answer}, nil
}

// BuildPrompt 组装发送给提供商的提示。
// 没有文件时提示就是问题本身；有文件时追加文件内容段落（文件内容可以为空）。
func BuildPrompt(question, fileText string, hasFile bool) string {
	if !hasFile {
		return question
	}
	return "Question: " + question + "\nFile Content: " + fileText
}
