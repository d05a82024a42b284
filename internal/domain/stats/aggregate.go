package stats

import "github.com/yuk-jeongmin/wantedcat/internal/domain/model"

// Report — сведения о деградации данных при агрегации.
// Не является ошибкой: используется только для метрик и логов.
type Report struct {
	// NoLabel — число событий без имени животного (исключены из сводки)
	NoLabel int
	// Degraded — число величин, которые не разобрались и посчитаны как 0
	Degraded int
}

// accumulator — промежуточные суммы по одному животному.
type accumulator struct {
	water float64
	food  float64
}

// AggregateWithReport группирует события по CatName и суммирует величины:
// drink → TotalWaterIntake, meal → TotalFoodIntake, прочие типы не учитываются.
//
// События без CatName исключаются. Порядок сводок — порядок первого появления
// имени во входных данных; вызывающий код не должен полагаться на большее,
// чем «одна запись на имя».
func AggregateWithReport(events []*model.Event) ([]model.DailyCatStats, Report) {
	var report Report
	order := make([]string, 0)
	acc := make(map[string]*accumulator)

	for _, e := range events {
		if e == nil {
			continue
		}
		if e.CatName == nil {
			report.NoLabel++
			continue
		}

		name := *e.CatName
		a, ok := acc[name]
		if !ok {
			a = &accumulator{}
			acc[name] = a
			order = append(order, name)
		}

		var target *float64
		switch e.EventType {
		case model.EventTypeDrink:
			target = &a.water
		case model.EventTypeMeal:
			target = &a.food
		default:
			continue
		}

		var value float64
		if e.WeightInfo != nil {
			v, parsed := ParseWeight(*e.WeightInfo)
			if !parsed {
				report.Degraded++
			}
			value = v
		}
		*target += value
	}

	out := make([]model.DailyCatStats, 0, len(order))
	for _, name := range order {
		a := acc[name]
		out = append(out, model.DailyCatStats{
			CatName:          name,
			TotalWaterIntake: a.water,
			TotalFoodIntake:  a.food,
		})
	}
	return out, report
}
