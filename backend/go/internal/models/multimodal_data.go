package models

import "time"

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser   SpeakerRole = "user"  // 用户角色。
	SpeakerModel  SpeakerRole = "model" // 模型角色。
	SpeakerSystem SpeakerRole = "system"
)

// Content 包含了构成单个消息的多个部分。
type Content struct {
	// 可选。构成单个消息的部分列表。
	Parts []*Part `json:"parts,omitempty"`
	// 可选。内容的生产者。
	Role SpeakerRole `json:"role,omitempty"`
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	Content []Content `json:"content,omitempty"` // 请求的内容列表。
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`      // 响应的内容列表。
	CreateTime   time.Time `json:"createTime,omitempty"`   // 响应创建时间。
	ResponseID   string    `json:"responseId,omitempty"`   // 响应ID。
	ModelVersion string    `json:"modelVersion,omitempty"` // 模型版本。
}

// Part 定义了消息的单个部分。
type Part struct {
	// 可选。内联字节数据。
	InlineData *Blob `json:"inlineData,omitempty"`
	// 可选。文本部分。
	Text string `json:"text,omitempty"`
}

// Blob 包含了内联的二进制数据。
type Blob struct {
	// 必填。原始字节数据。
	Data []byte `json:"data,omitempty"`
	// 必填。源数据的 IANA 标准 MIME 类型。
	MIMEType string `json:"mimeType,omitempty"`
}

// NewTextRequest 用单条用户文本构造请求。
func NewTextRequest(prompt string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Content: []Content{{
			Role:  SpeakerUser,
			Parts: []*Part{{Text: prompt}},
		}},
	}
}

// Text 拼接响应中第一个非空候选内容的全部文本部分。
func (r *GenerateContentResponse) Text() string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		var text string
		for _, p := range c.Parts {
			if p != nil {
				text += p.Text
			}
		}
		if text != "" {
			return text
		}
	}
	return ""
}
