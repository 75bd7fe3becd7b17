package llm

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

const analyzePrompt = `You are a nutrition expert. Identify every food in the photo and estimate its portion and macros.
Answer with JSON only, no prose, in this shape:
{"foods":[{"name":"","portion":"","calories":0,"protein":0,"carbs":0,"fat":0,"confidence":0.0}],"confidence":0.0}
Calories are kcal, macros are grams, confidence is between 0 and 1.`

// Recognizer 通过 OpenAI 兼容接口调用视觉模型识别食物
type Recognizer struct {
	client  openai.Client
	model   string
	enabled bool
}

func NewRecognizer(conf *config.LLMConfig) *Recognizer {
	baseURL := conf.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Recognizer{
		client: openai.NewClient(
			option.WithAPIKey(conf.APIKey),
			option.WithBaseURL(baseURL),
		),
		model:   conf.Model,
		enabled: conf.APIKey != "",
	}
}

// Analyze 识别图片中的食物
func (r *Recognizer) Analyze(ctx context.Context, imageURL string) (*types.FoodAnalysis, error) {
	if !r.enabled {
		return nil, errs.Unknown("food recognition is not configured", nil)
	}
	contentParts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Text: analyzePrompt,
			},
		},
		{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageURL,
				},
			},
		},
	}
	startTime := time.Now()
	userMessage := openai.ChatCompletionUserMessageParam{
		Content: openai.ChatCompletionUserMessageParamContentUnion{
			OfArrayOfContentParts: contentParts,
		},
	}
	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{OfUser: &userMessage},
		},
	}
	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.L.Error("failed to analyze food image", zap.Error(err))
		return nil, errs.Network("food recognition is unavailable", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errs.Unknown("food recognition returned no answer", nil)
	}
	content := completion.Choices[0].Message.Content
	log.L.Info("food analyzed", zap.String("model", r.model), zap.Duration("gen time", time.Since(startTime)))
	return ParseAnalysis(content)
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseAnalysis 解析模型输出，允许外层包着 markdown 代码块
func ParseAnalysis(content string) (*types.FoodAnalysis, error) {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	if i := strings.Index(content, "{"); i > 0 {
		content = content[i:]
	}
	var a types.FoodAnalysis
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return nil, errs.Unknown("food recognition answer is not readable", err)
	}
	if len(a.Foods) == 0 {
		return nil, errs.Validation("no food found in the photo", nil)
	}
	var (
		total   types.Macros
		confSum float64
	)
	for i := range a.Foods {
		f := &a.Foods[i]
		f.Calories = math.Max(0, f.Calories)
		f.Protein = math.Max(0, f.Protein)
		f.Carbs = math.Max(0, f.Carbs)
		f.Fat = math.Max(0, f.Fat)
		f.Confidence = clamp01(f.Confidence)
		total = total.Add(types.Macros{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat})
		confSum += f.Confidence
	}
	a.Total = total
	if a.Confidence <= 0 {
		a.Confidence = confSum / float64(len(a.Foods))
	}
	a.Confidence = clamp01(a.Confidence)
	return &a, nil
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
