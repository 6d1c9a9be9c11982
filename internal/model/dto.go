package model

// PredictRequest 是 /predict 的请求体。
type PredictRequest struct {
	City string `json:"city"`
}

// PredictResponse 是 /predict 的响应体。推荐列表仅按城市过滤，与预测分数互相独立。
type PredictResponse struct {
	City             string        `json:"city"`
	PredictionScores []float64     `json:"prediction_scores"`
	Recommendations  []Destination `json:"recommendations"`
}

// DestinationListResponse 是 /destinations 与 /destinations/stored 的响应体。
type DestinationListResponse struct {
	Success      bool          `json:"success"`
	Total        int           `json:"total"`
	Destinations []Destination `json:"destinations"`
}

// SaveDestinationsRequest 是 /save_destinations 的请求体。
// 元素使用指针，以便区分 null 与空对象。
type SaveDestinationsRequest struct {
	Destinations []*DestinationInput `json:"destinations"`
}
