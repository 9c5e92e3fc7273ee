package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeDocument 将通用课程文档（catalog.json 条目、数据库 JSONB）解码为 Course
// 文档字段名见 Course 的 mapstructure 标签，数字字段允许以字符串形式出现
func DecodeDocument(doc map[string]interface{}) (*Course, error) {
	var course Course
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &course,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode course document: %w", err)
	}
	return &course, nil
}

// ParseDocuments 解析 JSON 数组形式的课程文档列表，保持原有顺序
// 只校验数组结构，单个文档由调用方逐条解码
func ParseDocuments(data []byte) ([]map[string]interface{}, error) {
	var docs []map[string]interface{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse course documents: %w", err)
	}
	return docs, nil
}
