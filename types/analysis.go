package types

// DetectedFood AI 识别出的单个食物
type DetectedFood struct {
	Name       string  `json:"name"`
	Portion    string  `json:"portion"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Confidence float64 `json:"confidence"`
}

// FoodAnalysis 图片识别结果
type FoodAnalysis struct {
	Foods      []DetectedFood `json:"foods"`
	Total      Macros         `json:"total"`
	Confidence float64        `json:"confidence"`
}

type AnalyzeRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

type LogAnalysisRequest struct {
	Analysis FoodAnalysis `json:"analysis"`
	MealType MealType     `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
}
