package request

import (
	"github.com/valyala/fastjson"
)

type AnalyzeRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// ParseAnalyzeRequest is lenient about field types: a missing or non-string
// text yields an empty Text so the caller reports it as too short.
func ParseAnalyzeRequest(body []byte) (*AnalyzeRequest, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, err
	}
	return &AnalyzeRequest{
		Text:   stringField(v, "text"),
		Locale: stringField(v, "locale"),
	}, nil
}

func stringField(v *fastjson.Value, key string) string {
	field := v.Get(key)
	if field == nil || field.Type() != fastjson.TypeString {
		return ""
	}
	b, err := field.StringBytes()
	if err != nil {
		return ""
	}
	return string(b)
}
