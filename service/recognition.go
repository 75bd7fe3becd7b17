package service

import (
	"context"
	"strings"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
	"github.com/petroshong/calofeed-sub001/types"
)

var _ IRecognitionService = (*RecognitionService)(nil)

type IRecognitionService interface {
	Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.FoodAnalysis, error)
	LogAnalysis(ctx context.Context, req types.LogAnalysisRequest) (*types.CalorieEntry, error)
}

type RecognitionService struct {
	Recognizer backend.Recognizer
	Calorie    ICalorieService
	Session    ISessionService
}

func (s *RecognitionService) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.FoodAnalysis, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if s.Recognizer == nil {
		return nil, errs.Unknown("food recognition is not configured", nil)
	}
	return s.Recognizer.Analyze(ctx, req.ImageURL)
}

// LogAnalysis 识别结果记为一条 ai_analysis 记录，带上置信度
func (s *RecognitionService) LogAnalysis(ctx context.Context, req types.LogAnalysisRequest) (*types.CalorieEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if s.Session.UserID() == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	a := req.Analysis
	if len(a.Foods) == 0 {
		return nil, errs.Validation("analysis has no foods", map[string]string{"analysis.foods": "must not be empty"})
	}
	names := make([]string, 0, len(a.Foods))
	for _, f := range a.Foods {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	name := strings.Join(names, ", ")
	if len(name) > 100 {
		name = name[:100]
	}
	confidence := min(max(a.Confidence, 0), 1)
	entry := types.NewEntry{
		Name:       name,
		Calories:   a.Total.Calories,
		Protein:    a.Total.Protein,
		Carbs:      a.Total.Carbs,
		Fat:        a.Total.Fat,
		MealType:   req.MealType,
		Source:     types.SourceAIAnalysis,
		Confidence: &confidence,
	}
	if err := validate.Struct(entry); err != nil {
		return nil, err
	}
	created := s.Calorie.AddEntry(entry)
	return &created, nil
}
