package service

import (
	"testing"
	"time"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
)

// TestStatsCache_GetSet проверяет базовые операции Get/Set.
func TestStatsCache_GetSet(t *testing.T) {
	cache := NewStatsCache(100, 5*time.Minute)
	date := stats.Date{Year: 2024, Month: time.March, Day: 1}

	if _, ok := cache.Get("u1", date); ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	cache.Set("u1", date, []model.DailyCatStats{{CatName: "Milo", TotalWaterIntake: 100}})
	got, ok := cache.Get("u1", date)
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if len(got) != 1 || got[0].CatName != "Milo" {
		t.Errorf("Get() = %+v", got)
	}

	// Другой пользователь — другой ключ
	if _, ok := cache.Get("u2", date); ok {
		t.Error("ожидался cache miss для другого пользователя")
	}
}

// TestStatsCache_Isolation проверяет, что изменение результата не портит кэш.
func TestStatsCache_Isolation(t *testing.T) {
	cache := NewStatsCache(100, 5*time.Minute)
	date := stats.Date{Year: 2024, Month: time.March, Day: 1}

	src := []model.DailyCatStats{{CatName: "Milo", TotalWaterIntake: 100}}
	cache.Set("u1", date, src)
	src[0].TotalWaterIntake = 1

	got, _ := cache.Get("u1", date)
	got[0].TotalWaterIntake = 2

	again, _ := cache.Get("u1", date)
	if again[0].TotalWaterIntake != 100 {
		t.Errorf("TotalWaterIntake = %v, ожидалось 100", again[0].TotalWaterIntake)
	}
}

// TestStatsCache_Eviction проверяет вытеснение при превышении размера.
func TestStatsCache_Eviction(t *testing.T) {
	cache := NewStatsCache(2, 5*time.Minute)
	d := stats.Date{Year: 2024, Month: time.March, Day: 1}

	cache.Set("u1", d, nil)
	cache.Set("u2", d, nil)
	cache.Set("u3", d, nil)

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, ожидалось 2", cache.Len())
	}
	if _, ok := cache.Get("u1", d); ok {
		t.Error("самая старая запись должна быть вытеснена")
	}
}

// TestStatsCache_TTL проверяет истечение записи.
func TestStatsCache_TTL(t *testing.T) {
	cache := NewStatsCache(10, 50*time.Millisecond)
	d := stats.Date{Year: 2024, Month: time.March, Day: 1}

	cache.Set("u1", d, []model.DailyCatStats{{CatName: "Milo"}})
	time.Sleep(120 * time.Millisecond)

	if _, ok := cache.Get("u1", d); ok {
		t.Error("ожидался cache miss после истечения TTL")
	}
}
