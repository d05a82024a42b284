// Пакет model — доменные модели media-module.
// Event — маппинг таблицы events (записи наблюдений с устройства).
package model

import "time"

// Типы событий, участвующие в дневной статистике.
const (
	// EventTypeDrink — питьё (суммируется в TotalWaterIntake)
	EventTypeDrink = "drink"
	// EventTypeMeal — еда (суммируется в TotalFoodIntake)
	EventTypeMeal = "meal"
)

// Event — событие, зафиксированное устройством.
// Сервис только читает события; запись выполняет сервис сбора данных.
type Event struct {
	// ID — идентификатор записи
	ID int64
	// UserID — владелец устройства
	UserID string
	// EventTime — момент события
	EventTime time.Time
	// DurationSeconds — длительность события (опционально)
	DurationSeconds *float32
	// WeightInfo — свободная строка с величиной, например "120g" (опционально)
	WeightInfo *string
	// OriginVideoURL — URL исходной видеозаписи в blob-хранилище
	OriginVideoURL *string
	// BBoxVideoURL — URL видеозаписи с разметкой
	BBoxVideoURL *string
	// EventType — тип события: drink, meal или другой
	EventType string
	// CatName — имя животного; nil, если распознавание не удалось
	CatName *string
}

// DailyCatStats — дневная сводка по одному животному.
type DailyCatStats struct {
	CatName          string  `json:"catName"`
	TotalWaterIntake float64 `json:"totalWaterIntake"`
	TotalFoodIntake  float64 `json:"totalFoodIntake"`
}
