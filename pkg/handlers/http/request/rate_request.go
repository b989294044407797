package request

import (
	"math"
	"strconv"
	"strings"

	"github.com/betterhyq/LexPlain/pkg/domain"
	"github.com/valyala/fastjson"
)

type RateRequest struct {
	Score int `json:"score"`
}

// ParseRateRequest accepts the score as a JSON number or a numeric string.
// Anything that is not a whole number is rejected with ErrInvalidScore; the
// range check belongs to the counters.
func ParseRateRequest(body []byte) (*RateRequest, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, domain.ErrInvalidScore
	}

	field := v.Get("score")
	if field == nil {
		return nil, domain.ErrInvalidScore
	}

	var score float64
	switch field.Type() {
	case fastjson.TypeNumber:
		score, err = field.Float64()
	case fastjson.TypeString:
		var raw []byte
		raw, err = field.StringBytes()
		if err == nil {
			score, err = strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		}
	default:
		return nil, domain.ErrInvalidScore
	}
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) || score != math.Trunc(score) {
		return nil, domain.ErrInvalidScore
	}
	if score < math.MinInt32 || score > math.MaxInt32 {
		return nil, domain.ErrInvalidScore
	}
	return &RateRequest{Score: int(score)}, nil
}
